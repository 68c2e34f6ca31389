// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package probe

import (
	"io"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/cnotch/queue"
	"github.com/cnotch/xlog"
)

// 事件类型
const (
	EventPicture = "picture" // 输出了一幅图像
	EventError   = "error"   // 访问单元解码失败
	EventEnd     = "end"     // 会话结束
)

// Event 会话事件
type Event struct {
	Type    string       `json:"type"`
	Token   string       `json:"token"`
	Picture *PictureInfo `json:"picture,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// Subscriber 事件订阅者
type Subscriber interface {
	// OnEvent 返回错误时取消订阅
	OnEvent(e *Event) error
	io.Closer
}

// SID 订阅 ID
type SID uint32

// subscription 在自己的 goroutine 中向订阅者发送事件
type subscription struct {
	sid        SID
	subscriber Subscriber
	recvQueue  *queue.SyncQueue
	closed     int32
	owner      *subscriptions
	logger     *xlog.Logger
}

// Close 停止订阅
func (s *subscription) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}
	s.recvQueue.Signal()
	return nil
}

func (s *subscription) send(e *Event) {
	s.recvQueue.Push(e)
}

func (s *subscription) consume() {
	defer func() {
		defer func() { // 避免 handler 再 panic
			recover()
		}()

		if r := recover(); r != nil {
			s.logger.Errorf("subscription routine panic；r = %v \n %s", r, debug.Stack())
		}

		s.owner.remove(s.sid)
		s.subscriber.Close()
		s.recvQueue.Reset()
	}()

	for atomic.LoadInt32(&s.closed) == 0 {
		v := s.recvQueue.Pop()
		if v == nil {
			continue
		}

		e := v.(*Event)
		if err := s.subscriber.OnEvent(e); err != nil {
			s.logger.Warnf("subscriber %d stopped: %v", s.sid, err)
			return
		}
		if e.Type == EventEnd {
			return
		}
	}
}

// subscriptions 会话的订阅者集合
type subscriptions struct {
	seed uint32
	m    sync.Map // SID -> *subscription
}

func (ss *subscriptions) add(subscriber Subscriber, logger *xlog.Logger) SID {
	s := &subscription{
		sid:        SID(atomic.AddUint32(&ss.seed, 1)),
		subscriber: subscriber,
		recvQueue:  queue.NewSyncQueue(),
		owner:      ss,
		logger:     logger,
	}
	ss.m.Store(s.sid, s)
	go s.consume()
	return s.sid
}

func (ss *subscriptions) remove(sid SID) *subscription {
	if v, ok := ss.m.Load(sid); ok {
		ss.m.Delete(sid)
		return v.(*subscription)
	}
	return nil
}

func (ss *subscriptions) publish(e *Event) {
	ss.m.Range(func(key, value interface{}) bool {
		value.(*subscription).send(e)
		return true
	})
}

func (ss *subscriptions) count() (n int) {
	ss.m.Range(func(key, value interface{}) bool {
		n++
		return true
	})
	return
}

// Subscribe 订阅会话事件；会话已结束时立即收到结束事件
func (p *Probe) Subscribe(subscriber Subscriber) SID {
	p.mu.Lock()
	defer p.mu.Unlock()

	sid := p.subs.add(subscriber, p.logger)
	if !p.endOn.IsZero() {
		if s, ok := p.subs.m.Load(sid); ok {
			s.(*subscription).send(&Event{Type: EventEnd, Token: p.token})
		}
	}
	return sid
}

// Unsubscribe 取消订阅
func (p *Probe) Unsubscribe(sid SID) {
	if s := p.subs.remove(sid); s != nil {
		s.Close()
	}
}

// SubscriberCount 订阅者数量
func (p *Probe) SubscriberCount() int {
	return p.subs.count()
}
