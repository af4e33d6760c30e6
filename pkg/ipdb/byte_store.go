package ipdb

import (
	"fmt"

	"github.com/tagphi/ipdb-search-golang/pkg/utils"
)

// byteStore 持有头部之后的只读数据段（节点表 + 记录区）。
// 所有偏移都来自文件内容，读取前必须做边界检查。
type byteStore struct {
	data []byte
}

func newByteStore(data []byte) *byteStore {
	return &byteStore{data: data}
}

func (s *byteStore) size() int {
	return len(s.data)
}

func (s *byteStore) readUint32(off int) (uint32, error) {
	v, ok := utils.GetUint32(s.data, off)
	if !ok {
		return 0, s.outOfBounds(off, 4)
	}
	return v, nil
}

func (s *byteStore) readUint16(off int) (uint16, error) {
	v, ok := utils.GetUint16(s.data, off)
	if !ok {
		return 0, s.outOfBounds(off, 2)
	}
	return v, nil
}

func (s *byteStore) readByte(off int) (byte, error) {
	v, ok := utils.GetByte(s.data, off)
	if !ok {
		return 0, s.outOfBounds(off, 1)
	}
	return v, nil
}

// readBytes 返回数据段的子切片，调用方不得修改
func (s *byteStore) readBytes(off, n int) ([]byte, error) {
	if off < 0 || n < 0 || off > len(s.data)-n {
		return nil, s.outOfBounds(off, n)
	}
	return s.data[off : off+n : off+n], nil
}

func (s *byteStore) outOfBounds(off, n int) error {
	return fmt.Errorf("%w: offset=%d, length=%d, size=%d", ErrOutOfBounds, off, n, len(s.data))
}
