// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package service

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"path"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cnotch/apirouter"
	"github.com/cnotch/avs2probe/config"
	"github.com/cnotch/avs2probe/network"
	"github.com/cnotch/avs2probe/probe"
	"github.com/cnotch/avs2probe/stats"
	"github.com/cnotch/xlog"
)

var (
	buffers = sync.Pool{
		New: func() interface{} {
			return bytes.NewBuffer(make([]byte, 0, 1024*2))
		},
	}
)

var crossdomainxml = []byte(
	`<?xml version="1.0" ?><cross-domain-policy>
			<allow-access-from domain="*" />
			<allow-http-request-headers-from domain="*" headers="*"/>
		</cross-domain-policy>`)

func (s *Service) initApis(mux *http.ServeMux) {
	api := apirouter.NewForGRPC(
		// 系统信息类API
		apirouter.GET("/api/v1/server", s.onGetServerInfo),
		apirouter.GET("/api/v1/runtime", s.onGetRuntime),

		// 解码会话API
		apirouter.GET("/api/v1/probes", s.onListProbes),
		apirouter.POST("/api/v1/probes", s.onPostProbe),
		apirouter.GET("/api/v1/probes/{token=*}", s.onGetReport),
		apirouter.GET("/api/v1/probes/{token=*}/dpb", s.onGetDPB),
		apirouter.GET("/api/v1/probes/{token=*}/pictures", s.onGetPictures),
		apirouter.GET("/api/v1/probes/{token=*}/params", s.onGetParams),
		apirouter.DELETE("/api/v1/probes/{token=*}", s.onStopProbe),
	)

	iterc := apirouter.ChainInterceptor(apirouter.PreInterceptor(localInterceptor))

	// api add to mux
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		if path.Base(r.URL.Path) == "crossdomain.xml" {
			w.Header().Set("Content-Type", "application/xml")
			w.Write(crossdomainxml)
			return
		}

		if iterc.PreHandle(w, r) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			api.ServeHTTP(w, r)
		}
	})
}

// 获取服务信息
func (s *Service) onGetServerInfo(w http.ResponseWriter, r *http.Request, pathParams apirouter.Params) {
	type server struct {
		Vendor   string   `json:"vendor"`
		Name     string   `json:"name"`
		Version  string   `json:"version"`
		OS       string   `json:"os"`
		Arch     string   `json:"arch"`
		Addrs    []string `json:"addrs,omitempty"`
		TLS      bool     `json:"tls"`
		Ingest   string   `json:"ingest,omitempty"`
		StartOn  string   `json:"start_on"`
		Duration string   `json:"duration"`
	}
	srv := server{
		Vendor:   config.Vendor,
		Name:     config.Name,
		Version:  config.Version,
		OS:       strings.Title(runtime.GOOS),
		Arch:     strings.ToUpper(runtime.GOARCH),
		Addrs:    network.ServerIPs(),
		TLS:      s.tlsusing,
		Ingest:   config.IngestAddr(),
		StartOn:  stats.StartingTime.Format(time.RFC3339Nano),
		Duration: time.Now().Sub(stats.StartingTime).String(),
	}

	if err := jsonTo(w, &srv); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// 获取运行时信息
func (s *Service) onGetRuntime(w http.ResponseWriter, r *http.Request, pathParams apirouter.Params) {
	const extraKey = "extra"

	type probes struct {
		Total   int `json:"total"`
		Running int `json:"running"`
	}
	type runtime struct {
		On     string             `json:"on"`
		Proc   stats.Proc         `json:"proc"`
		Probes probes             `json:"probes"`
		Decode stats.DecodeSample `json:"decode"`
		Ingest stats.ConnsSample  `json:"ingest"`
		Extra  *stats.Runtime     `json:"extra,omitempty"`
	}
	total, running := probe.Count()

	rt := runtime{
		On:     time.Now().Format(time.RFC3339Nano),
		Proc:   stats.MeasureRuntime(),
		Probes: probes{total, running},
		Decode: stats.Total.GetSample(),
		Ingest: stats.IngestConns.GetSample(),
	}

	params := r.URL.Query()
	if strings.TrimSpace(params.Get(extraKey)) == "1" {
		rt.Extra = stats.MeasureFullRuntime()
	}

	if err := jsonTo(w, &rt); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Service) onListProbes(w http.ResponseWriter, r *http.Request, pathParams apirouter.Params) {
	params := r.URL.Query()
	pageSize, pageToken, err := listParamers(params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	count, infos := probe.Infos(pageToken, pageSize)
	type probeInfos struct {
		Total         int           `json:"total"`
		NextPageToken string        `json:"next_page_token"`
		Probes        []*probe.Info `json:"probes,omitempty"`
	}

	list := &probeInfos{
		Total:  count,
		Probes: infos,
	}
	if len(infos) > 0 {
		list.NextPageToken = infos[len(infos)-1].Token
	}

	if err := jsonTo(w, list); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// 上传 AVS2 基本流，解码完成后返回报告
func (s *Service) onPostProbe(w http.ResponseWriter, r *http.Request, pathParams apirouter.Params) {
	source := "http://" + r.RemoteAddr
	if name := r.URL.Query().Get("name"); name != "" {
		source += "/" + name
	}

	logger := s.logger.With(xlog.Fields(xlog.F("upload", source)))
	p := probe.NewProbe(source, probeOptions(logger)...)
	probe.Regist(p, config.Retention())

	err := ProbeES(r.Body, p, false)
	p.Close()
	if err != nil {
		logger.Warnf("read upload failed: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Location", "/api/v1/probes/"+p.Token())
	w.WriteHeader(http.StatusCreated)
	if err := jsonTo(w, p.Report(true)); err != nil {
		logger.Warnf("write report failed: %v", err)
	}
}

func (s *Service) onGetReport(w http.ResponseWriter, r *http.Request, pathParams apirouter.Params) {
	p := probe.Get(pathParams.ByName("token"))
	if p == nil {
		http.NotFound(w, r)
		return
	}

	includeParams := strings.TrimSpace(r.URL.Query().Get("p")) == "1"
	if err := jsonTo(w, p.Report(includeParams)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Service) onGetDPB(w http.ResponseWriter, r *http.Request, pathParams apirouter.Params) {
	p := probe.Get(pathParams.ByName("token"))
	if p == nil {
		http.NotFound(w, r)
		return
	}

	if err := jsonTo(w, p.DPB()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Service) onGetPictures(w http.ResponseWriter, r *http.Request, pathParams apirouter.Params) {
	p := probe.Get(pathParams.ByName("token"))
	if p == nil {
		http.NotFound(w, r)
		return
	}

	if err := jsonTo(w, p.Pictures()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Service) onGetParams(w http.ResponseWriter, r *http.Request, pathParams apirouter.Params) {
	p := probe.Get(pathParams.ByName("token"))
	if p == nil {
		http.NotFound(w, r)
		return
	}

	if err := jsonTo(w, p.Params()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Service) onStopProbe(w http.ResponseWriter, r *http.Request, pathParams apirouter.Params) {
	p := probe.Get(pathParams.ByName("token"))
	if p != nil {
		probe.Unregist(p)
	}

	w.WriteHeader(http.StatusOK)
}

func jsonTo(w io.Writer, o interface{}) error {
	formatted := buffers.Get().(*bytes.Buffer)
	formatted.Reset()
	defer buffers.Put(formatted)

	body, err := json.Marshal(o)
	if err != nil {
		return err
	}

	if err := json.Indent(formatted, body, "", "\t"); err != nil {
		return err
	}

	if _, err := w.Write(formatted.Bytes()); err != nil {
		return err
	}
	return nil
}

func listParamers(params url.Values) (pageSize int, pageToken string, err error) {
	pageSizeStr := params.Get("page_size")
	pageSize = 20
	if pageSizeStr != "" {
		var err error
		pageSize, err = strconv.Atoi(pageSizeStr)
		if err != nil {
			return pageSize, pageToken, err
		}
	}
	pageToken = params.Get("page_token")
	return
}

// 修改类的请求只接受本机发起
func localInterceptor(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}

	if network.IsLocalAddr(r.RemoteAddr) {
		return true
	}

	http.Error(w, "访问被拒绝，只接受本机请求", http.StatusForbidden)
	return false
}
