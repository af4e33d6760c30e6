package ipdb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tagphi/ipdb-search-golang/pkg/ipdb/ipdbtest"
)

type imageBuilder struct {
	*ipdbtest.Builder
}

func newImageBuilder(fields []string, languages map[string]int) *imageBuilder {
	return &imageBuilder{Builder: ipdbtest.NewBuilder(fields, languages)}
}

func (b *imageBuilder) insert(t testing.TB, cidr, record string) *imageBuilder {
	t.Helper()
	b.Insert(t, cidr, record)
	return b
}

func (b *imageBuilder) image(t testing.TB, mutate ...func(header map[string]interface{})) []byte {
	t.Helper()
	return b.Image(t, mutate...)
}

func (b *imageBuilder) open(t testing.TB, opts ...Option) *Database {
	t.Helper()
	db, err := New(b.image(t), opts...)
	require.NoError(t, err)
	return db
}
