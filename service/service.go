// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package service

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cnotch/avs2probe/config"
	"github.com/cnotch/avs2probe/probe"
	"github.com/cnotch/avs2probe/stats"
	"github.com/cnotch/scheduler"
	"github.com/cnotch/xlog"
	"github.com/emitter-io/address"
	"github.com/kelindar/tcp"
)

// Service 网络服务对象(服务的入口)
type Service struct {
	context  context.Context
	cancel   context.CancelFunc
	logger   *xlog.Logger
	tlsusing bool
	http     *http.Server
	ingest   *tcp.Server
	last     stats.DecodeSample
}

// NewService 创建服务
func NewService(ctx context.Context, l *xlog.Logger) (s *Service, err error) {
	ctx, cancel := context.WithCancel(ctx)
	s = &Service{
		context: ctx,
		cancel:  cancel,
		logger:  l,
		http:    new(http.Server),
		ingest:  new(tcp.Server),
	}

	// 设置 http 的Handler
	mux := http.NewServeMux()

	if config.Profile() {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	s.initApis(mux)
	s.initWebsocket(mux)
	s.http.Handler = mux

	// 设置 rtp over tcp 推流的 AcceptHandler
	s.ingest.OnAccept = s.onAccept

	// 定时输出解码统计
	scheduler.PeriodFunc(time.Minute, time.Minute, s.logStats,
		"The task of logging decode statistics(1minute)")

	s.logger.Info("service configured")
	return s, nil
}

// Listen starts the service.
func (s *Service) Listen() (err error) {
	defer s.Close()
	s.hookSignals()

	// http ws
	addr, err := address.Parse(config.Addr(), 1554)
	if err != nil {
		s.logger.Panic(err.Error())
	}
	s.listen(addr, nil)

	// https wss
	tlsconf := config.GetTLSConfig()
	if tlsconf != nil {
		tls, err := tlsconf.Load()
		if err == nil {
			if tlsAddr, err := address.Parse(tlsconf.ListenAddr, 443); err == nil {
				s.listen(tlsAddr, tls)
				s.tlsusing = true
			}
		}
	}

	// rtp over tcp
	if config.IngestAddr() != "" {
		ingestAddr, err := address.Parse(config.IngestAddr(), 1555)
		if err != nil {
			s.logger.Panic(err.Error())
		}
		s.listenIngest(ingestAddr)
	}

	s.logger.Infof("service started(%s).", config.Version)
	// Block
	<-s.context.Done()
	return nil
}

// listen configures the http listener on a specified address.
func (s *Service) listen(addr *net.TCPAddr, conf *tls.Config) {
	s.logger.Infof("starting the http listener, addr = %s.", addr.String())

	l, err := net.Listen("tcp", addr.String())
	if err != nil {
		s.logger.Panic(err.Error())
	}
	if conf != nil {
		l = tls.NewListener(l, conf)
	}

	go func() {
		if err := s.http.Serve(l); err != nil && err != http.ErrServerClosed {
			s.logger.Warnf("http listener stopped: %v", err)
		}
	}()
}

// listenIngest configures the rtp over tcp listener.
func (s *Service) listenIngest(addr *net.TCPAddr) {
	s.logger.Infof("starting the ingest listener, addr = %s.", addr.String())

	l, err := net.Listen("tcp", addr.String())
	if err != nil {
		s.logger.Panic(err.Error())
	}

	go func() {
		if err := s.ingest.Serve(l); err != nil {
			s.logger.Warnf("ingest listener stopped: %v", err)
		}
	}()
}

func (s *Service) logStats() {
	total := stats.Total.GetSample()
	delta := total.Sub(s.last)
	s.last = total
	count, running := probe.Count()

	s.logger.Infof("probes: %d/%d running; last minute: frames %d, pictures %d, outputs %d, errors %d, dropped %d",
		running, count, delta.Frames, delta.Pictures, delta.Outputs, delta.Errors, delta.Dropped)
}

// Close closes gracefully the service.,
func (s *Service) Close() {
	if s.cancel != nil {
		s.cancel()
	}

	// 停止计划任务
	jobs := scheduler.Jobs()
	for _, job := range jobs {
		job.Cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.http.Shutdown(ctx)

	// 结束全部会话
	probe.UnregistAll()
}

// OnSignal starts the signal processing and makes su
func (s *Service) hookSignals() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for sig := range c {
			s.onSignal(sig)
		}
	}()
}

// OnSignal will be called when a OS-level signal is received.
func (s *Service) onSignal(sig os.Signal) {
	switch sig {
	case syscall.SIGTERM:
		fallthrough
	case syscall.SIGINT:
		s.logger.Warn(fmt.Sprintf("received signal %s, exiting...", sig.String()))
		s.Close()
		os.Exit(0)
	}
}
