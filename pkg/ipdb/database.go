package ipdb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/tagphi/ipdb-search-golang/pkg/utils"
)

// metaLengthSize 文件开头的元数据长度字段（uint32 大端）
const metaLengthSize = 4

// Option 配置 Database
type Option func(*options)

type options struct {
	lengthPrefix LengthPrefix
}

// WithLengthPrefix 指定记录长度字段所用的两个字节，默认 StandardLengthPrefix
func WithLengthPrefix(p LengthPrefix) Option {
	return func(o *options) {
		o.lengthPrefix = p
	}
}

// engine 是打开后不可变的查询状态，Close 时整体丢弃
type engine struct {
	trie     *trie
	resolver *resolver
}

// Database 是 .ipdb 文件的只读查询入口，打开后可被多个 goroutine 并发使用
type Database struct {
	meta     MetaData
	fileSize int
	engine   atomic.Pointer[engine]
}

// Open 读取整个数据库文件并校验
//
// 参数:
//   - path: 数据库文件路径
//   - opts: 可选配置
//
// 返回:
//   - *Database: 打开的数据库
//   - error: 文件读取失败、大小不一致或元数据错误
func Open(path string, opts ...Option) (*Database, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database file: %w", err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}
	utils.Debug("Database file size: %d bytes", fileInfo.Size())

	data := make([]byte, fileInfo.Size())
	if _, err := io.ReadFull(file, data); err != nil {
		return nil, fmt.Errorf("%w: incomplete read of %s: %v", ErrFileSize, path, err)
	}
	return New(data, opts...)
}

// New 从内存中的完整文件镜像构建 Database，data 此后不得再被修改
func New(data []byte, opts ...Option) (*Database, error) {
	o := options{lengthPrefix: StandardLengthPrefix}
	for _, opt := range opts {
		opt(&o)
	}

	fileSize := len(data)
	if fileSize < metaLengthSize {
		return nil, fmt.Errorf("%w: file too short (%d bytes)", ErrFileSize, fileSize)
	}
	metaLength := int(binary.BigEndian.Uint32(data[:metaLengthSize]))
	if metaLength > fileSize-metaLengthSize {
		return nil, fmt.Errorf("%w: metadata length %d exceeds file size %d", ErrFileSize, metaLength, fileSize)
	}

	meta, err := ParseMetadata(data[metaLengthSize : metaLengthSize+metaLength])
	if err != nil {
		return nil, err
	}
	if fileSize != metaLengthSize+metaLength+meta.TotalSize {
		return nil, fmt.Errorf("%w: expected [%d], real [%d]",
			ErrFileSize, metaLengthSize+metaLength+meta.TotalSize, fileSize)
	}

	store := newByteStore(data[metaLengthSize+metaLength:])
	t, err := newTrie(store, meta.NodeCount)
	if err != nil {
		return nil, err
	}

	db := &Database{meta: *meta, fileSize: fileSize}
	db.engine.Store(&engine{
		trie: t,
		resolver: &resolver{
			store:     store,
			nodeCount: meta.NodeCount,
			fileSize:  fileSize,
			prefix:    o.lengthPrefix,
		},
	})
	utils.Debug("Database opened: build=%d, ip_version=%d, nodes=%d, data=%d bytes, fields=%d, languages=%v",
		meta.Build, meta.IPVersion, meta.NodeCount, meta.TotalSize, len(meta.Fields), meta.languageCodes())
	return db, nil
}

// Close 释放数据段，之后的查询返回 ErrDatabaseClosed
func (db *Database) Close() error {
	db.engine.Store(nil)
	return nil
}

// Closed 数据库是否已关闭
func (db *Database) Closed() bool {
	return db.engine.Load() == nil
}

// IsIPv4Support 数据库是否包含 IPv4 数据
func (db *Database) IsIPv4Support() bool {
	return db.meta.supports(IPv4)
}

// IsIPv6Support 数据库是否包含 IPv6 数据
func (db *Database) IsIPv6Support() bool {
	return db.meta.supports(IPv6)
}

// BuildTime 数据库构建时间
func (db *Database) BuildTime() uint64 {
	return db.meta.Build
}

// Languages 支持的语言（排序后）
func (db *Database) Languages() []string {
	return db.meta.languageCodes()
}

// Fields 字段列表的副本
func (db *Database) Fields() []string {
	return append([]string(nil), db.meta.Fields...)
}

// NodeCount 节点数量
func (db *Database) NodeCount() int {
	return db.meta.NodeCount
}

// Meta 返回元数据的副本
func (db *Database) Meta() MetaData {
	m := db.meta
	m.Fields = db.Fields()
	m.Languages = make(map[string]int, len(db.meta.Languages))
	for k, v := range db.meta.Languages {
		m.Languages[k] = v
	}
	return m
}

// Find 返回地址在指定语言下的字段值，顺序与 Fields() 一致
func (db *Database) Find(addr, language string) ([]string, error) {
	return db.find(addr, language)
}

// FindMap 返回 字段名 -> 值
func (db *Database) FindMap(addr, language string) (map[string]string, error) {
	values, err := db.find(addr, language)
	if err != nil {
		return nil, err
	}
	info := make(map[string]string, len(values))
	for i, v := range values {
		info[db.meta.Fields[i]] = v
	}
	return info, nil
}

// Lookup 查询地址并按字段名解码为 T（带 ipdb 标签的结构体）
func Lookup[T any](db *Database, addr, language string) (*T, error) {
	values, err := db.find(addr, language)
	if err != nil {
		return nil, err
	}
	rec := new(T)
	if err := Decode(values, db.meta.Fields, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// FindCity 查询城市库记录
func (db *Database) FindCity(addr, language string) (*CityInfo, error) {
	return Lookup[CityInfo](db, addr, language)
}

// FindDistrict 查询区县库记录
func (db *Database) FindDistrict(addr, language string) (*DistrictInfo, error) {
	return Lookup[DistrictInfo](db, addr, language)
}

// FindBaseStation 查询基站库记录
func (db *Database) FindBaseStation(addr, language string) (*BaseStationInfo, error) {
	return Lookup[BaseStationInfo](db, addr, language)
}

// FindIDC 查询 IDC 库记录
func (db *Database) FindIDC(addr, language string) (*IDCInfo, error) {
	return Lookup[IDCInfo](db, addr, language)
}

func (db *Database) find(addr, language string) ([]string, error) {
	e := db.engine.Load()
	if e == nil {
		return nil, ErrDatabaseClosed
	}

	ip, family, err := utils.GetIPBytes(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIPFormat, err)
	}
	bitCount := 128
	if family == utils.IPV4 {
		if !db.IsIPv4Support() {
			return nil, ErrNoSupportIPv4
		}
		bitCount = 32
	} else if !db.IsIPv6Support() {
		return nil, ErrNoSupportIPv6
	}

	off, ok := db.meta.Languages[language]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoSupportLanguage, language)
	}

	ref, err := e.trie.search(ip, bitCount)
	if err != nil {
		if errors.Is(err, ErrDataNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrDataNotExists, addr)
		}
		return nil, err
	}
	body, err := e.resolver.resolve(ref)
	if err != nil {
		return nil, err
	}
	utils.Debug("record for %s at offset %d: %d bytes", addr, ref.value, len(body))

	return languageSlice(strings.Split(string(body), "\t"), off, len(db.meta.Fields))
}

// Info 打印数据库信息（调试级别）
func Info(db *Database) {
	utils.Debugln("=========== Database Information ===========")
	utils.Debug("Build Time: %d", db.BuildTime())
	utils.Debug("IPv4 Support: %t, IPv6 Support: %t", db.IsIPv4Support(), db.IsIPv6Support())
	utils.Debug("Node Count: %d", db.NodeCount())
	utils.Debug("File Size: %d bytes, Data Size: %d bytes", db.fileSize, db.meta.TotalSize)
	utils.Debug("Languages: %s", strings.Join(db.Languages(), " "))
	utils.Debug("Fields: %s", strings.Join(db.Fields(), " "))
	utils.Debugln("===========================================")
}
