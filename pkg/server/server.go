// Package server exposes an ipdb.Database over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/tagphi/ipdb-search-golang/pkg/ipdb"
	"github.com/tagphi/ipdb-search-golang/pkg/utils"
)

const (
	lookupPrefix = "/api/ip/"

	// ContentTypeMsgpack 请求此类型时以 msgpack 编码响应
	ContentTypeMsgpack = "application/msgpack"

	requestIDHeader = "X-Request-Id"
)

// Response 查询响应
type Response struct {
	IP       string         `json:"ip" msgpack:"ip"`
	Language string         `json:"language" msgpack:"language"`
	Region   *ipdb.CityInfo `json:"region,omitempty" msgpack:"region,omitempty"`
	Error    string         `json:"error,omitempty" msgpack:"error,omitempty"`
}

// Config 服务配置
type Config struct {
	// Language 未指定 lang 参数时使用的语言
	Language string
	// CacheSize 查询结果缓存条数，0 表示不缓存
	CacheSize int
	// Registry 指标注册表，为空时新建
	Registry *prometheus.Registry
	// Logger 为空时使用 utils.Logger()
	Logger *zap.Logger
}

// Server 是 IP 查询的 http.Handler
type Server struct {
	db       *ipdb.Database
	language string
	cache    *lru.Cache[string, ipdb.CityInfo]
	metrics  *metrics
	logger   *zap.Logger
	mux      *http.ServeMux
}

// New 创建查询服务
func New(db *ipdb.Database, cfg Config) (*Server, error) {
	if cfg.Language == "" {
		if langs := db.Languages(); len(langs) > 0 {
			cfg.Language = langs[0]
		}
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = utils.Logger()
	}

	m, err := newMetrics(cfg.Registry)
	if err != nil {
		return nil, err
	}

	s := &Server{
		db:       db,
		language: cfg.Language,
		metrics:  m,
		logger:   cfg.Logger,
		mux:      http.NewServeMux(),
	}
	if cfg.CacheSize > 0 {
		s.cache, err = lru.New[string, ipdb.CityInfo](cfg.CacheSize)
		if err != nil {
			return nil, err
		}
	}

	s.mux.HandleFunc(lookupPrefix, s.lookupHandler)
	s.mux.HandleFunc("/api/health", s.healthCheckHandler)
	s.mux.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(requestIDHeader, id)
	s.mux.ServeHTTP(w, r)
}

// 查询处理函数
func (s *Server) lookupHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ip := strings.TrimPrefix(r.URL.Path, lookupPrefix)
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = s.language
	}

	resp := Response{IP: ip, Language: lang}
	if ip == "" {
		resp.Error = "missing IP address"
		s.metrics.observe(resultBadRequest, start)
		s.write(w, r, http.StatusBadRequest, resp)
		return
	}

	info, cached, err := s.find(ip, lang)
	status := http.StatusOK
	result := resultOK
	switch {
	case err == nil:
		resp.Region = info
		if cached {
			result = resultCached
		}
	case errors.Is(err, ipdb.ErrIPFormat),
		errors.Is(err, ipdb.ErrUnsupportedAddressFamily),
		errors.Is(err, ipdb.ErrNoSupportLanguage):
		status, result = http.StatusBadRequest, resultBadRequest
	case errors.Is(err, ipdb.ErrDataNotExists):
		status, result = http.StatusNotFound, resultNotFound
	case errors.Is(err, ipdb.ErrDatabaseClosed):
		status, result = http.StatusServiceUnavailable, resultError
	default:
		status, result = http.StatusInternalServerError, resultError
	}
	if err != nil {
		resp.Error = err.Error()
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("lookup failed",
			zap.String("request_id", w.Header().Get(requestIDHeader)),
			zap.String("ip", ip),
			zap.String("language", lang),
			zap.Error(err))
	}

	s.metrics.observe(result, start)
	s.write(w, r, status, resp)
}

// find 缓存按值保存记录，每个响应拿到自己的副本
func (s *Server) find(ip, lang string) (*ipdb.CityInfo, bool, error) {
	// 关闭后缓存同样失效
	if s.db.Closed() {
		return nil, false, ipdb.ErrDatabaseClosed
	}
	key := lang + "|" + ip
	if s.cache != nil {
		if info, ok := s.cache.Get(key); ok {
			return cloneCity(info), true, nil
		}
	}
	info, err := s.db.FindCity(ip, lang)
	if err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		s.cache.Add(key, *cloneCity(*info))
	}
	return info, false, nil
}

func cloneCity(info ipdb.CityInfo) *ipdb.CityInfo {
	info.ASNInfo = append([]ipdb.ASNInfo(nil), info.ASNInfo...)
	return &info
}

// 健康检查处理函数
func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
		"build":  s.db.BuildTime(),
	})
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, status int, resp Response) {
	if strings.Contains(r.Header.Get("Accept"), ContentTypeMsgpack) {
		w.Header().Set("Content-Type", ContentTypeMsgpack)
		w.WriteHeader(status)
		if err := msgpack.NewEncoder(w).Encode(&resp); err != nil {
			s.logger.Warn("编码响应失败", zap.Error(err))
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("编码响应失败", zap.Error(err))
	}
}
