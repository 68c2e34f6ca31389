// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package probe

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cnotch/scheduler"
)

// 全局变量
var (
	probes sync.Map // 会话集合 token->*Probe
)

// Regist 注册会话，会话结束后保留 retention 时长再自动注销
func Regist(p *Probe, retention time.Duration) {
	probes.Store(p.token, p)
	go func() {
		<-p.Done()
		runRetentionTask(p, retention)
	}()
}

// Unregist 取消注册并关闭会话
func Unregist(p *Probe) {
	if v, ok := probes.Load(p.token); ok && v == p {
		probes.Delete(p.token)
	}
	p.Close()
}

// UnregistAll 取消全部注册的会话
func UnregistAll() {
	probes.Range(func(key, value interface{}) bool {
		probes.Delete(key)
		value.(*Probe).Close()
		return true
	})
}

// Get 获取令牌为 token 的会话
func Get(token string) *Probe {
	if v, ok := probes.Load(token); ok {
		return v.(*Probe)
	}
	return nil
}

// Count 会话数量和其中正在解码的数量
func Count() (total, running int) {
	probes.Range(func(key, value interface{}) bool {
		total++
		if value.(*Probe).Status() == StatusRunning {
			running++
		}
		return true
	})
	return
}

// Infos 按令牌排序分页返回会话概要
func Infos(pagetoken string, pagesize int) (int, []*Info) {
	var infos []*Info
	count := 0
	probes.Range(func(key, value interface{}) bool {
		count++
		if key.(string) > pagetoken {
			infos = append(infos, value.(*Probe).Info())
		}
		return true
	})

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Token < infos[j].Token
	})

	if pagesize <= 0 || pagesize > len(infos) {
		return count, infos
	}
	return count, infos[:pagesize]
}

func runRetentionTask(p *Probe, retention time.Duration) {
	if retention <= 0 {
		Unregist(p)
		return
	}
	task := &retentionTask{p: p, d: retention}
	scheduler.PostFunc(task, task.run,
		fmt.Sprintf("%s: the task removing a finished probe after its retention.", p.token))
}

// 结束会话的保留计划，到期执行一次
type retentionTask struct {
	p    *Probe
	d    time.Duration
	done bool
}

func (r *retentionTask) Next(t time.Time) time.Time {
	if r.done {
		return time.Time{}
	}
	return t.Add(r.d)
}

func (r *retentionTask) run() {
	r.done = true
	Unregist(r.p)
}
