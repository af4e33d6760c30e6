package ipdb

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFields = []string{"country_name", "region_name", "city_name"}

func testBuilder(t *testing.T) *imageBuilder {
	return newImageBuilder(testFields, map[string]int{"EN": 0, "CN": 3}).
		insert(t, "1.1.1.0/24", "US\tCA\tLosAngeles\t美国\t加利福尼亚州\t洛杉矶").
		insert(t, "1.1.3.0/24", "AU\tQLD\tBrisbane\t澳大利亚\t昆士兰州\t布里斯班").
		insert(t, "114.114.0.0/16", "CN\tJiangsu\tNanjing\t中国\t江苏\t南京").
		insert(t, "2001:250::/32", "CN\tBeijing\tBeijing\t中国\t北京\t北京")
}

func TestLookupScenario(t *testing.T) {
	db := newImageBuilder(testFields, map[string]int{"EN": 0}).
		insert(t, "1.1.1.0/24", "US\tCA\tLosAngeles").
		open(t)

	info, err := db.FindMap("1.1.1.1", "EN")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"country_name": "US",
		"region_name":  "CA",
		"city_name":    "LosAngeles",
	}, info)

	city, err := db.FindCity("1.1.1.1", "EN")
	require.NoError(t, err)
	assert.Equal(t, &CityInfo{CountryName: "US", RegionName: "CA", CityName: "LosAngeles"}, city)
}

func TestFind(t *testing.T) {
	db := testBuilder(t).open(t)

	tests := []struct {
		ip       string
		language string
		expected []string
	}{
		{"1.1.1.0", "EN", []string{"US", "CA", "LosAngeles"}},
		{"1.1.1.255", "CN", []string{"美国", "加利福尼亚州", "洛杉矶"}},
		{"1.1.3.7", "EN", []string{"AU", "QLD", "Brisbane"}},
		{"114.114.114.114", "CN", []string{"中国", "江苏", "南京"}},
		{"2001:250:200::", "EN", []string{"CN", "Beijing", "Beijing"}},
		{"2001:250:ffff:ffff::1", "CN", []string{"中国", "北京", "北京"}},
		// IPv4 映射地址按 IPv6 走完整 128 位，落在同一个 IPv4 网段
		{"::ffff:1.1.1.1", "EN", []string{"US", "CA", "LosAngeles"}},
	}
	for _, test := range tests {
		got, err := db.Find(test.ip, test.language)
		if !assert.NoError(t, err, "Find(%s, %s)", test.ip, test.language) {
			continue
		}
		assert.Equal(t, test.expected, got, "Find(%s, %s)", test.ip, test.language)
	}
}

func TestFindErrors(t *testing.T) {
	db := testBuilder(t).open(t)

	tests := []struct {
		ip       string
		language string
		err      error
	}{
		{"8.8.8.8", "EN", ErrDataNotExists},
		{"1.1.2.1", "EN", ErrDataNotExists},
		{"1.1.0.255", "CN", ErrDataNotExists},
		{"2001:251::1", "EN", ErrDataNotExists},
		{"::1", "EN", ErrDataNotExists},
		{"8.8.8.8", "JP", ErrNoSupportLanguage},
		{"1.1.1.1", "", ErrNoSupportLanguage},
		{"1.1.1", "EN", ErrIPFormat},
		{"256.1.1.1", "EN", ErrIPFormat},
		{"fe80::1%eth0", "EN", ErrIPFormat},
		{"", "EN", ErrIPFormat},
	}
	for _, test := range tests {
		_, err := db.Find(test.ip, test.language)
		assert.ErrorIs(t, err, test.err, "Find(%q, %q)", test.ip, test.language)
	}
}

func TestUnsupportedAddressFamily(t *testing.T) {
	b := testBuilder(t)

	b.IPVersion = IPv4
	db := b.open(t)
	assert.True(t, db.IsIPv4Support())
	assert.False(t, db.IsIPv6Support())
	_, err := db.Find("::1", "EN")
	assert.ErrorIs(t, err, ErrUnsupportedAddressFamily)
	assert.ErrorIs(t, err, ErrNoSupportIPv6)
	// 地址族先于语言检查
	_, err = db.Find("2001:250::1", "JP")
	assert.ErrorIs(t, err, ErrNoSupportIPv6)

	b.IPVersion = IPv6
	db = b.open(t)
	assert.False(t, db.IsIPv4Support())
	assert.True(t, db.IsIPv6Support())
	_, err = db.Find("1.1.1.1", "EN")
	assert.ErrorIs(t, err, ErrUnsupportedAddressFamily)
	assert.ErrorIs(t, err, ErrNoSupportIPv4)
}

func TestLookupIdempotent(t *testing.T) {
	db := testBuilder(t).open(t)

	first, err := db.FindCity("1.1.1.1", "CN")
	require.NoError(t, err)
	second, err := db.FindCity("1.1.1.1", "CN")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)
}

func TestConcurrentLookups(t *testing.T) {
	db := testBuilder(t).open(t)
	ips := []string{"1.1.1.1", "1.1.3.3", "114.114.114.114", "2001:250::1"}

	want := make(map[string][]string)
	for _, ip := range ips {
		v, err := db.Find(ip, "EN")
		require.NoError(t, err)
		want[ip] = v
	}

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				ip := ips[i%len(ips)]
				v, err := db.Find(ip, "EN")
				if err != nil || len(v) != 3 || v[2] != want[ip][2] {
					errs <- ip
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for ip := range errs {
		t.Errorf("并发查询 %s 结果不一致", ip)
	}
}

func TestRecordShorterThanLanguageBlock(t *testing.T) {
	db := newImageBuilder(testFields, map[string]int{"EN": 0, "CN": 3}).
		insert(t, "10.0.0.0/8", "US\tCA\tLosAngeles").
		open(t)

	_, err := db.Find("10.1.2.3", "EN")
	require.NoError(t, err)
	_, err = db.Find("10.1.2.3", "CN")
	assert.ErrorIs(t, err, ErrDatabaseCorrupt)
}

func TestCityNestedRecord(t *testing.T) {
	fields := []string{"country_name", "region_name", "city_name", "district_info", "asn_info"}
	district := `{"country_name":"中国","region_name":"北京","city_name":"北京","district_name":"海淀区","china_admin_code":"110108"}`
	asn := `[{"asn":4538,"reg":"CN","cc":"CN","net":"CERNET-AP","org":"CERNET"}]`
	db := newImageBuilder(fields, map[string]int{"CN": 0}).
		insert(t, "166.111.0.0/16", "中国\t北京\t北京\t"+district+"\t"+asn).
		insert(t, "8.8.8.0/24", "美国\t\t\t\t").
		open(t)

	city, err := db.FindCity("166.111.4.100", "CN")
	require.NoError(t, err)
	assert.Equal(t, "海淀区", city.DistrictInfo.DistrictName)
	assert.Equal(t, "110108", city.DistrictInfo.ChinaAdminCode)
	assert.Equal(t, []ASNInfo{{ASN: 4538, Reg: "CN", Cc: "CN", Net: "CERNET-AP", Org: "CERNET"}}, city.ASNInfo)

	city, err = db.FindCity("8.8.8.8", "CN")
	require.NoError(t, err)
	assert.Equal(t, &CityInfo{CountryName: "美国"}, city)
}

func TestRecordKinds(t *testing.T) {
	fields := []string{"country_name", "region_name", "city_name", "owner_domain", "isp_domain", "idc", "base_station", "district_name"}
	db := newImageBuilder(fields, map[string]int{"CN": 0}).
		insert(t, "117.136.0.0/16", "中国\t广东\t广州\t\t移动\tIDC\tWIFI\t天河区").
		open(t)

	idc, err := db.FindIDC("117.136.1.1", "CN")
	require.NoError(t, err)
	assert.Equal(t, &IDCInfo{CountryName: "中国", RegionName: "广东", CityName: "广州", IspDomain: "移动", IDC: "IDC"}, idc)

	bs, err := db.FindBaseStation("117.136.1.1", "CN")
	require.NoError(t, err)
	assert.Equal(t, "WIFI", bs.BaseStation)

	d, err := db.FindDistrict("117.136.1.1", "CN")
	require.NoError(t, err)
	assert.Equal(t, "天河区", d.DistrictName)

	_, err = Lookup[string](db, "117.136.1.1", "CN")
	assert.Error(t, err)
}

func TestMetadataAccessors(t *testing.T) {
	b := testBuilder(t)
	db := b.open(t)

	assert.Equal(t, uint64(1535696240), db.BuildTime())
	assert.Equal(t, []string{"CN", "EN"}, db.Languages())
	assert.Equal(t, testFields, db.Fields())
	assert.Equal(t, b.NodeCount(), db.NodeCount())

	fields := db.Fields()
	fields[0] = "changed"
	assert.Equal(t, "country_name", db.Fields()[0])

	meta := db.Meta()
	meta.Languages["XX"] = 9
	assert.Equal(t, []string{"CN", "EN"}, db.Languages())

	Info(db)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.ipdb")
	require.NoError(t, os.WriteFile(path, testBuilder(t).image(t), 0644))

	db, err := Open(path)
	require.NoError(t, err)
	assert.NotEmpty(t, db.Fields())
	assert.NotEmpty(t, db.Languages())

	got, err := db.Find("1.1.1.1", "EN")
	require.NoError(t, err)
	assert.Equal(t, []string{"US", "CA", "LosAngeles"}, got)

	_, err = Open(filepath.Join(t.TempDir(), "missing.ipdb"))
	assert.Error(t, err)
}

func TestOpenFileSizeMismatch(t *testing.T) {
	image := testBuilder(t).image(t)

	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{"empty", nil, ErrFileSize},
		{"short length", image[:3], ErrFileSize},
		{"truncated data", image[:len(image)-1], ErrFileSize},
		{"trailing byte", append(append([]byte(nil), image...), 0), ErrFileSize},
		{"metadata length too large", func() []byte {
			d := append([]byte(nil), image...)
			binary.BigEndian.PutUint32(d, uint32(len(d)))
			return d
		}(), ErrFileSize},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, err := New(tc.data)
			assert.Nil(t, db)
			assert.ErrorIs(t, err, tc.err)
		})
	}

	path := filepath.Join(t.TempDir(), "bad.ipdb")
	require.NoError(t, os.WriteFile(path, image[:len(image)-10], 0644))
	_, err := Open(path)
	assert.ErrorIs(t, err, ErrFileSize)
}

func TestOpenTotalSizeDisagrees(t *testing.T) {
	b := testBuilder(t)
	data := b.image(t, func(h map[string]interface{}) {
		h["total_size"] = h["total_size"].(int) + 1
	})
	_, err := New(data)
	assert.ErrorIs(t, err, ErrFileSize)
}

func TestOpenMetadataError(t *testing.T) {
	b := testBuilder(t)
	data := b.image(t, func(h map[string]interface{}) {
		delete(h, "languages")
	})
	_, err := New(data)
	assert.ErrorIs(t, err, ErrMetaData)

	data = b.image(t, func(h map[string]interface{}) {
		h["fields"] = []string{}
	})
	_, err = New(data)
	assert.ErrorIs(t, err, ErrMetaData)
}

func TestClose(t *testing.T) {
	db := testBuilder(t).open(t)
	assert.False(t, db.Closed())
	require.NoError(t, db.Close())
	assert.True(t, db.Closed())

	_, err := db.Find("1.1.1.1", "EN")
	assert.ErrorIs(t, err, ErrDatabaseClosed)
	_, err = db.FindCity("1.1.1.1", "EN")
	assert.ErrorIs(t, err, ErrDatabaseClosed)
	require.NoError(t, db.Close())
}

func TestWithLengthPrefixOption(t *testing.T) {
	// 长度 0x41 且首字节为 'A' 的记录在两种布局下读出的长度相同
	record := "A" + strings.Repeat("a", 0x40)
	b := newImageBuilder([]string{"country_name"}, map[string]int{"EN": 0}).
		insert(t, "9.9.9.0/24", record)

	for _, p := range []LengthPrefix{StandardLengthPrefix, SkipByteLengthPrefix} {
		db := b.open(t, WithLengthPrefix(p))
		got, err := db.Find("9.9.9.9", "EN")
		require.NoError(t, err)
		assert.Equal(t, []string{record}, got)
	}
}

// 集成测试 - 需要实际数据库文件才能运行
func TestIntegrationFind(t *testing.T) {
	dbPath := os.Getenv("IPDB_TEST_DB_PATH")
	if dbPath == "" {
		t.Skip("跳过集成测试: 环境变量IPDB_TEST_DB_PATH未设置")
	}

	db, err := Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	language := db.Languages()[0]
	for _, ip := range []string{"1.1.1.1", "114.114.114.114", "2001:250:200::"} {
		info, err := db.FindMap(ip, language)
		if err != nil {
			t.Logf("IP: %s, 错误: %v", ip, err)
			continue
		}
		t.Logf("IP: %s, 结果: %v", ip, info)
	}
}
