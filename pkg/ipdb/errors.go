package ipdb

import (
	"errors"
	"fmt"
)

var (
	// ────────────────────────────────────────────────────────────────────────
	// 加载错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrFileSize 文件大小与元数据声明不一致
	ErrFileSize = errors.New("IP Database file size error")

	// ErrMetaData 元数据缺失或类型错误
	ErrMetaData = errors.New("IP Database metadata error")

	// ────────────────────────────────────────────────────────────────────────
	// 查询错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrIPFormat 无法解析的 IP 地址
	ErrIPFormat = errors.New("query IP format error")

	// ErrUnsupportedAddressFamily 数据库不支持该地址族
	ErrUnsupportedAddressFamily = errors.New("address family not supported")

	// ErrNoSupportIPv4 数据库不包含 IPv4 数据
	ErrNoSupportIPv4 = fmt.Errorf("%w: IPv4 not support", ErrUnsupportedAddressFamily)

	// ErrNoSupportIPv6 数据库不包含 IPv6 数据
	ErrNoSupportIPv6 = fmt.Errorf("%w: IPv6 not support", ErrUnsupportedAddressFamily)

	// ErrNoSupportLanguage 语言未注册
	ErrNoSupportLanguage = errors.New("language not support")

	// ErrDataNotExists 地址不在任何已存储的网段内
	ErrDataNotExists = errors.New("data is not exists")

	// ────────────────────────────────────────────────────────────────────────
	// 数据错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrDatabaseCorrupt 内部偏移或长度越界
	ErrDatabaseCorrupt = errors.New("database error")

	// ErrOutOfBounds 读取超出数据段
	ErrOutOfBounds = fmt.Errorf("%w: read out of bounds", ErrDatabaseCorrupt)

	// ErrDatabaseClosed 数据库已关闭
	ErrDatabaseClosed = errors.New("database closed")
)
