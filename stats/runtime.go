// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stats

import (
	"runtime"
	"time"

	"github.com/kelindar/process"
)

// 创建时间
var (
	StartingTime = time.Now()
)

// Runtime 运行时统计
type Runtime struct {
	Heap   Heap         `json:"heap"`
	Stack  Memory       `json:"stack"` // MemStats.StackInuse/StackSys
	GC     GC           `json:"gc"`
	Go     Go           `json:"go"`
	Decode DecodeSample `json:"decode"` // 全部会话的解码累计
	Ingest ConnsSample  `json:"ingest"`
}

// Proc 进程信息统计
type Proc struct {
	CPU    float64 `json:"cpu"`    // cpu使用情况
	Priv   int32   `json:"priv"`   // 私有内存 KB
	Virt   int32   `json:"virt"`   // 虚拟内存 KB
	Uptime int32   `json:"uptime"` // 运行时间 S
}

// Heap 堆信息，单位 KB
type Heap struct {
	Inuse   int32 `json:"inuse"`
	Sys     int32 `json:"sys"`
	Alloc   int32 `json:"alloc"`
	Idle    int32 `json:"idle"`
	Objects int32 `json:"objects"` // = MemStats.HeapObjects
}

// Memory 通用内存信息
type Memory struct {
	Inuse int32 `json:"inuse"` // KB
	Sys   int32 `json:"sys"`   // KB
}

// GC 垃圾回收信息
type GC struct {
	CPU   float64 `json:"cpu"`
	Sys   int32   `json:"sys"` // KB
	Count uint32  `json:"count"`
}

// Go goroutines、cpu 数和总内存
type Go struct {
	Count int32 `json:"count"` // runtime.NumGoroutine()
	Procs int32 `json:"procs"` // runtime.NumCPU()
	Sys   int32 `json:"sys"`   // KB MemStats.Sys
	Alloc int32 `json:"alloc"` // KB MemStats.TotalAlloc
}

// MeasureRuntime 获取进程信息，不支持的平台上只有运行时间
func MeasureRuntime() (proc Proc) {
	proc.Uptime = int32(time.Since(StartingTime).Seconds())
	defer func() {
		recover()
	}()

	var memoryPriv, memoryVirtual int64
	var cpu float64
	process.ProcUsage(&cpu, &memoryPriv, &memoryVirtual)
	proc.CPU = cpu
	proc.Priv = toKB(uint64(memoryPriv))
	proc.Virt = toKB(uint64(memoryVirtual))
	return
}

// MeasureFullRuntime 获取运行时信息。
func MeasureFullRuntime() *Runtime {
	var memory runtime.MemStats
	runtime.ReadMemStats(&memory)

	return &Runtime{
		Heap: Heap{
			Alloc:   toKB(memory.HeapAlloc),
			Idle:    toKB(memory.HeapIdle),
			Inuse:   toKB(memory.HeapInuse),
			Objects: int32(memory.HeapObjects),
			Sys:     toKB(memory.HeapSys),
		},
		Stack: Memory{
			Inuse: toKB(memory.StackInuse),
			Sys:   toKB(memory.StackSys),
		},
		GC: GC{
			CPU:   memory.GCCPUFraction,
			Sys:   toKB(memory.GCSys),
			Count: memory.NumGC,
		},
		Go: Go{
			Count: int32(runtime.NumGoroutine()),
			Procs: int32(runtime.NumCPU()),
			Sys:   toKB(memory.Sys),
			Alloc: toKB(memory.TotalAlloc),
		},
		Decode: Total.GetSample(),
		Ingest: IngestConns.GetSample(),
	}
}

// 字节转换为 KB，避免 int32 溢出
func toKB(v uint64) int32 {
	return int32(v / 1024)
}
