package ipdb

import (
	"fmt"
)

// LengthPrefix 指定记录长度字段由哪两个字节组成（高字节、低字节），
// 两者都相对于记录起始位置。记录内容总是从起始位置 +2 开始。
type LengthPrefix struct {
	High int
	Low  int
}

var (
	// StandardLengthPrefix 标准大端 uint16：第 1、2 字节
	StandardLengthPrefix = LengthPrefix{High: 0, Low: 1}

	// SkipByteLengthPrefix 部分历史版本读取器使用的第 1、3 字节
	SkipByteLengthPrefix = LengthPrefix{High: 0, Low: 2}
)

type resolver struct {
	store     *byteStore
	nodeCount int
	fileSize  int
	prefix    LengthPrefix
}

// resolve 返回叶子指向的记录字节（制表符分隔，所有语言依次拼接）
func (r *resolver) resolve(ref nodeRef) ([]byte, error) {
	if !ref.leaf {
		return nil, fmt.Errorf("%w: node %d is not a record pointer", ErrDatabaseCorrupt, ref.value)
	}
	resolved := ref.value
	if resolved >= r.fileSize {
		return nil, fmt.Errorf("%w: record offset %d beyond file size %d", ErrDatabaseCorrupt, resolved, r.fileSize)
	}

	size, err := r.recordLength(resolved)
	if err != nil {
		return nil, err
	}
	if resolved+2+size > r.store.size() {
		return nil, fmt.Errorf("%w: record at %d claims %d bytes, data size %d",
			ErrDatabaseCorrupt, resolved, size, r.store.size())
	}
	return r.store.readBytes(resolved+2, size)
}

func (r *resolver) recordLength(resolved int) (int, error) {
	if r.prefix == StandardLengthPrefix {
		v, err := r.store.readUint16(resolved)
		return int(v), err
	}
	hi, err := r.store.readByte(resolved + r.prefix.High)
	if err != nil {
		return 0, err
	}
	lo, err := r.store.readByte(resolved + r.prefix.Low)
	if err != nil {
		return 0, err
	}
	return int(hi)<<8 | int(lo), nil
}
