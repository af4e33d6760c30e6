package ipdb

import (
	"github.com/tagphi/ipdb-search-golang/pkg/utils"
)

const (
	// NodeSize 每个节点 8 字节：bit=0 与 bit=1 两个 4 字节大端子节点引用
	NodeSize = 8

	// IPv4 子树位于 ::ffff:0:0/96 之下：80 个 0 位后跟 16 个 1 位
	v4PrefixZeroBits = 80
	v4PrefixBits     = 96
)

// nodeRef 是节点表中读出的引用：要么是节点索引，要么是记录区的指针。
// 节点数量处的引用仍视为节点，只有严格大于节点数量才是记录指针。
type nodeRef struct {
	leaf  bool
	value int // 节点索引；leaf 时为记录在数据段中的偏移
}

type trie struct {
	store     *byteStore
	nodeCount int
	v4Offset  int
}

func newTrie(store *byteStore, nodeCount int) (*trie, error) {
	t := &trie{store: store, nodeCount: nodeCount}

	node := 0
	for i := 0; i < v4PrefixBits && node < nodeCount; i++ {
		bit := 0
		if i >= v4PrefixZeroBits {
			bit = 1
		}
		next, err := t.readNode(node, bit)
		if err != nil {
			return nil, err
		}
		node = next
	}
	t.v4Offset = node
	if node > nodeCount {
		utils.Warning("IPv4 prefix walk reached record pointer %d (node count %d), every IPv4 lookup resolves to that record", node, nodeCount)
	} else if node == nodeCount {
		utils.Warning("IPv4 prefix walk stopped at reference %d equal to node count, IPv4 lookups descend from there", node)
	}
	utils.Debug("IPv4 subtree starts at node %d (node count %d)", node, nodeCount)
	return t, nil
}

func (t *trie) classify(raw int) nodeRef {
	if raw > t.nodeCount {
		return nodeRef{leaf: true, value: raw - t.nodeCount + t.nodeCount*NodeSize}
	}
	return nodeRef{value: raw}
}

func (t *trie) readNode(node, bit int) (int, error) {
	v, err := t.store.readUint32(node*NodeSize + bit*4)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// search 从起始节点按位（高位在前）下降，直到遇到记录指针
func (t *trie) search(ip []byte, bitCount int) (nodeRef, error) {
	node := 0
	if bitCount == 32 {
		node = t.v4Offset
	}

	for i := 0; i < bitCount; i++ {
		if node > t.nodeCount {
			break
		}
		next, err := t.readNode(node, utils.BitAt(ip, i))
		if err != nil {
			return nodeRef{}, err
		}
		node = next
	}

	ref := t.classify(node)
	if !ref.leaf {
		return nodeRef{}, ErrDataNotExists
	}
	return ref, nil
}
