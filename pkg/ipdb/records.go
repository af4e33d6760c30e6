package ipdb

// 记录类型只是数据加上 ipdb 标签：同一个按名解码器适用于所有类型，
// 数据库新增或重排字段不影响已有类型。

// CityInfo 城市库记录
type CityInfo struct {
	CountryName       string `ipdb:"country_name" json:"country_name" msgpack:"country_name"`
	RegionName        string `ipdb:"region_name" json:"region_name" msgpack:"region_name"`
	CityName          string `ipdb:"city_name" json:"city_name" msgpack:"city_name"`
	DistrictName      string `ipdb:"district_name" json:"district_name,omitempty" msgpack:"district_name,omitempty"`
	OwnerDomain       string `ipdb:"owner_domain" json:"owner_domain,omitempty" msgpack:"owner_domain,omitempty"`
	IspDomain         string `ipdb:"isp_domain" json:"isp_domain,omitempty" msgpack:"isp_domain,omitempty"`
	Latitude          string `ipdb:"latitude" json:"latitude,omitempty" msgpack:"latitude,omitempty"`
	Longitude         string `ipdb:"longitude" json:"longitude,omitempty" msgpack:"longitude,omitempty"`
	Timezone          string `ipdb:"timezone" json:"timezone,omitempty" msgpack:"timezone,omitempty"`
	UtcOffset         string `ipdb:"utc_offset" json:"utc_offset,omitempty" msgpack:"utc_offset,omitempty"`
	ChinaRegionCode   string `ipdb:"china_region_code" json:"china_region_code,omitempty" msgpack:"china_region_code,omitempty"`
	ChinaCityCode     string `ipdb:"china_city_code" json:"china_city_code,omitempty" msgpack:"china_city_code,omitempty"`
	ChinaDistrictCode string `ipdb:"china_district_code" json:"china_district_code,omitempty" msgpack:"china_district_code,omitempty"`
	ChinaAdminCode    string `ipdb:"china_admin_code" json:"china_admin_code,omitempty" msgpack:"china_admin_code,omitempty"`
	IddCode           string `ipdb:"idd_code" json:"idd_code,omitempty" msgpack:"idd_code,omitempty"`
	CountryCode       string `ipdb:"country_code" json:"country_code,omitempty" msgpack:"country_code,omitempty"`
	ContinentCode     string `ipdb:"continent_code" json:"continent_code,omitempty" msgpack:"continent_code,omitempty"`
	IDC               string `ipdb:"idc" json:"idc,omitempty" msgpack:"idc,omitempty"`
	BaseStation       string `ipdb:"base_station" json:"base_station,omitempty" msgpack:"base_station,omitempty"`
	CountryCode3      string `ipdb:"country_code3" json:"country_code3,omitempty" msgpack:"country_code3,omitempty"`
	EuropeanUnion     string `ipdb:"european_union" json:"european_union,omitempty" msgpack:"european_union,omitempty"`
	CurrencyCode      string `ipdb:"currency_code" json:"currency_code,omitempty" msgpack:"currency_code,omitempty"`
	CurrencyName      string `ipdb:"currency_name" json:"currency_name,omitempty" msgpack:"currency_name,omitempty"`
	Anycast           string `ipdb:"anycast" json:"anycast,omitempty" msgpack:"anycast,omitempty"`
	Line              string `ipdb:"line" json:"line,omitempty" msgpack:"line,omitempty"`
	Route             string `ipdb:"route" json:"route,omitempty" msgpack:"route,omitempty"`
	ASN               string `ipdb:"asn" json:"asn,omitempty" msgpack:"asn,omitempty"`
	AreaCode          string `ipdb:"area_code" json:"area_code,omitempty" msgpack:"area_code,omitempty"`
	UsageType         string `ipdb:"usage_type" json:"usage_type,omitempty" msgpack:"usage_type,omitempty"`

	DistrictInfo DistrictInfo `ipdb:"district_info" json:"district_info" msgpack:"district_info"`
	ASNInfo      []ASNInfo    `ipdb:"asn_info" json:"asn_info,omitempty" msgpack:"asn_info,omitempty"`
}

// ASNInfo 是城市库 asn_info 字段中的单个条目
type ASNInfo struct {
	ASN    int    `ipdb:"asn" json:"asn" msgpack:"asn"`
	Reg    string `ipdb:"reg" json:"reg,omitempty" msgpack:"reg,omitempty"`
	Cc     string `ipdb:"cc" json:"cc,omitempty" msgpack:"cc,omitempty"`
	Net    string `ipdb:"net" json:"net,omitempty" msgpack:"net,omitempty"`
	Org    string `ipdb:"org" json:"org,omitempty" msgpack:"org,omitempty"`
	Type   string `ipdb:"type" json:"type,omitempty" msgpack:"type,omitempty"`
	Domain string `ipdb:"domain" json:"domain,omitempty" msgpack:"domain,omitempty"`
}

// DistrictInfo 区县库记录，也作为城市库的 district_info 嵌入
type DistrictInfo struct {
	CountryName    string `ipdb:"country_name" json:"country_name,omitempty" msgpack:"country_name,omitempty"`
	RegionName     string `ipdb:"region_name" json:"region_name,omitempty" msgpack:"region_name,omitempty"`
	CityName       string `ipdb:"city_name" json:"city_name,omitempty" msgpack:"city_name,omitempty"`
	DistrictName   string `ipdb:"district_name" json:"district_name,omitempty" msgpack:"district_name,omitempty"`
	ChinaAdminCode string `ipdb:"china_admin_code" json:"china_admin_code,omitempty" msgpack:"china_admin_code,omitempty"`
	CoveringRadius string `ipdb:"covering_radius" json:"covering_radius,omitempty" msgpack:"covering_radius,omitempty"`
	Latitude       string `ipdb:"latitude" json:"latitude,omitempty" msgpack:"latitude,omitempty"`
	Longitude      string `ipdb:"longitude" json:"longitude,omitempty" msgpack:"longitude,omitempty"`
}

// BaseStationInfo 基站库记录
type BaseStationInfo struct {
	CountryName string `ipdb:"country_name" json:"country_name" msgpack:"country_name"`
	RegionName  string `ipdb:"region_name" json:"region_name" msgpack:"region_name"`
	CityName    string `ipdb:"city_name" json:"city_name" msgpack:"city_name"`
	OwnerDomain string `ipdb:"owner_domain" json:"owner_domain,omitempty" msgpack:"owner_domain,omitempty"`
	IspDomain   string `ipdb:"isp_domain" json:"isp_domain,omitempty" msgpack:"isp_domain,omitempty"`
	BaseStation string `ipdb:"base_station" json:"base_station,omitempty" msgpack:"base_station,omitempty"`
}

// IDCInfo IDC 库记录
type IDCInfo struct {
	CountryName string `ipdb:"country_name" json:"country_name" msgpack:"country_name"`
	RegionName  string `ipdb:"region_name" json:"region_name" msgpack:"region_name"`
	CityName    string `ipdb:"city_name" json:"city_name" msgpack:"city_name"`
	OwnerDomain string `ipdb:"owner_domain" json:"owner_domain,omitempty" msgpack:"owner_domain,omitempty"`
	IspDomain   string `ipdb:"isp_domain" json:"isp_domain,omitempty" msgpack:"isp_domain,omitempty"`
	IDC         string `ipdb:"idc" json:"idc,omitempty" msgpack:"idc,omitempty"`
}
