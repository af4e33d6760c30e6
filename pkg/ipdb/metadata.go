package ipdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/multierr"
)

// IP 版本位
const (
	IPv4 = 0x01
	IPv6 = 0x02
)

// MetaData 表示数据库头部的元数据
type MetaData struct {
	Build     uint64         `json:"build"`      // 构建时间
	IPVersion uint16         `json:"ip_version"` // 支持的 IP 版本位掩码
	Languages map[string]int `json:"languages"`  // 语言 -> 字段偏移
	NodeCount int            `json:"node_count"` // 节点数量
	TotalSize int            `json:"total_size"` // 数据段大小
	Fields    []string       `json:"fields"`     // 字段列表
}

// ParseMetadata 解析并校验头部 JSON
//
// 所有缺失或类型错误的键会一起报告，返回的错误满足 errors.Is(err, ErrMetaData)。
func ParseMetadata(header []byte) (*MetaData, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(header, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetaData, err)
	}

	meta := &MetaData{}
	var errs error
	decode := func(key string, dst interface{}) {
		v, ok := raw[key]
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("missing key %q", key))
			return
		}
		// null 会被 json.Unmarshal 静默忽略
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			errs = multierr.Append(errs, fmt.Errorf("invalid key %q: null", key))
			return
		}
		if err := json.Unmarshal(v, dst); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("invalid key %q: %v", key, err))
		}
	}

	var nodeCount, totalSize int32
	decode("build", &meta.Build)
	decode("ip_version", &meta.IPVersion)
	decode("node_count", &nodeCount)
	decode("total_size", &totalSize)
	decode("fields", &meta.Fields)
	decode("languages", &meta.Languages)
	meta.NodeCount = int(nodeCount)
	meta.TotalSize = int(totalSize)

	if errs == nil {
		errs = meta.validate()
	}
	if errs != nil {
		return nil, fmt.Errorf("%w: %w", ErrMetaData, errs)
	}
	return meta, nil
}

func (m *MetaData) validate() error {
	var errs error
	if len(m.Fields) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("empty fields"))
	}
	if len(m.Languages) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("empty languages"))
	}
	if m.NodeCount <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("node_count must be positive, got %d", m.NodeCount))
	}
	if m.TotalSize < 0 {
		errs = multierr.Append(errs, fmt.Errorf("total_size must not be negative, got %d", m.TotalSize))
	} else if m.NodeCount > 0 && m.NodeCount*8 > m.TotalSize {
		errs = multierr.Append(errs, fmt.Errorf("node table (%d nodes) exceeds total_size %d", m.NodeCount, m.TotalSize))
	}
	for _, lang := range m.languageCodes() {
		if off := m.Languages[lang]; off < 0 {
			errs = multierr.Append(errs, fmt.Errorf("language %q has negative offset %d", lang, off))
		}
	}
	return errs
}

func (m *MetaData) languageCodes() []string {
	ls := make([]string, 0, len(m.Languages))
	for l := range m.Languages {
		ls = append(ls, l)
	}
	sort.Strings(ls)
	return ls
}

func (m *MetaData) supports(version uint16) bool {
	return m.IPVersion&version == version
}
