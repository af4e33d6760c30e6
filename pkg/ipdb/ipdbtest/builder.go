// Package ipdbtest builds small .ipdb images in memory for tests.
//
// The trie is an IPv6 trie; IPv4 networks are stored under ::ffff:0:0/96,
// the path readers follow to find the IPv4 subtree.
package ipdbtest

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tagphi/ipdb-search-golang/pkg/utils"
)

const (
	nodeSize     = 8
	v4PrefixBits = 96
)

const (
	childEmpty = iota
	childNode
	childLeaf
)

type child struct {
	kind int
	val  int
}

// Builder accumulates networks and serializes them as a complete file image.
type Builder struct {
	Build     uint64
	IPVersion uint16
	Fields    []string
	Languages map[string]int

	nodes   [][2]child
	records []string
}

// NewBuilder returns a builder for a database supporting both IPv4 and IPv6.
func NewBuilder(fields []string, languages map[string]int) *Builder {
	return &Builder{
		Build:     1535696240,
		IPVersion: 0x01 | 0x02,
		Fields:    fields,
		Languages: languages,
		nodes:     make([][2]child, 1),
	}
}

// Insert maps cidr to record, the tab-separated values of every language in
// schema order. Networks must not overlap.
func (b *Builder) Insert(t testing.TB, cidr, record string) *Builder {
	t.Helper()
	prefix := netip.MustParsePrefix(cidr)
	n := prefix.Bits()
	if prefix.Addr().Is4() {
		n += v4PrefixBits
	}
	require.Greater(t, n, 0, "empty prefix %s", cidr)
	addr := prefix.Addr().As16()

	rec := len(b.records)
	b.records = append(b.records, record)

	node := 0
	for i := 0; i < n; i++ {
		bit := utils.BitAt(addr[:], i)
		if i == n-1 {
			require.NotEqual(t, childNode, b.nodes[node][bit].kind, "network %s covers existing networks", cidr)
			b.nodes[node][bit] = child{kind: childLeaf, val: rec}
			break
		}
		switch c := b.nodes[node][bit]; c.kind {
		case childNode:
			node = c.val
		case childEmpty:
			b.nodes = append(b.nodes, [2]child{})
			next := len(b.nodes) - 1
			b.nodes[node][bit] = child{kind: childNode, val: next}
			node = next
		default:
			t.Fatalf("network %s overlaps an existing network", cidr)
		}
	}
	return b
}

// NodeCount is the node_count the next Image will declare: every inserted
// node plus one sink node that absorbs uncovered addresses.
func (b *Builder) NodeCount() int {
	return len(b.nodes) + 1
}

// Image serializes the database. mutate may rewrite the header before it is
// encoded.
func (b *Builder) Image(t testing.TB, mutate ...func(header map[string]interface{})) []byte {
	t.Helper()
	sink := len(b.nodes)
	nodeCount := b.NodeCount()

	var records bytes.Buffer
	// offset 0 of the record area is addressed by a reference equal to
	// node_count, which readers treat as a node, so nothing may live there
	records.Write([]byte{0, 0})
	offsets := make([]int, len(b.records))
	for i, r := range b.records {
		offsets[i] = records.Len()
		require.LessOrEqual(t, len(r), 0xFFFF)
		_ = binary.Write(&records, binary.BigEndian, uint16(len(r)))
		records.WriteString(r)
	}

	data := make([]byte, nodeCount*nodeSize, nodeCount*nodeSize+records.Len())
	ref := func(c child) uint32 {
		switch c.kind {
		case childNode:
			return uint32(c.val)
		case childLeaf:
			return uint32(nodeCount + offsets[c.val])
		}
		return uint32(sink)
	}
	for i, n := range b.nodes {
		binary.BigEndian.PutUint32(data[i*nodeSize:], ref(n[0]))
		binary.BigEndian.PutUint32(data[i*nodeSize+4:], ref(n[1]))
	}
	binary.BigEndian.PutUint32(data[sink*nodeSize:], uint32(sink))
	binary.BigEndian.PutUint32(data[sink*nodeSize+4:], uint32(sink))
	data = append(data, records.Bytes()...)

	header := map[string]interface{}{
		"build":      b.Build,
		"ip_version": b.IPVersion,
		"node_count": nodeCount,
		"total_size": len(data),
		"fields":     b.Fields,
		"languages":  b.Languages,
	}
	for _, m := range mutate {
		m(header)
	}
	meta, err := json.Marshal(header)
	require.NoError(t, err)

	out := make([]byte, 4, 4+len(meta)+len(data))
	binary.BigEndian.PutUint32(out, uint32(len(meta)))
	out = append(out, meta...)
	return append(out, data...)
}
