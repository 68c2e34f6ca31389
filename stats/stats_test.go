// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stats

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	total := NewDecode()
	sub1 := NewChildDecode(total)
	sub2 := NewChildDecode(total)

	sub1.AddFrame(100)
	sub1.AddPicture()
	sub1.AddOutput()
	sub2.AddFrame(200)
	sub2.AddError()
	sub2.AddDropped()

	assert.Equal(t, DecodeSample{Frames: 1, Bytes: 100, Pictures: 1, Outputs: 1}, sub1.GetSample())
	assert.Equal(t, DecodeSample{Frames: 2, Bytes: 300, Pictures: 1, Outputs: 1, Errors: 1, Dropped: 1}, total.GetSample())

	var sum DecodeSample
	sum.Add(sub1.GetSample())
	sum.Add(sub2.GetSample())
	assert.Equal(t, total.GetSample(), sum)
	assert.Equal(t, sub2.GetSample(), total.GetSample().Sub(sub1.GetSample()))
}

func TestDecode_Concurrent(t *testing.T) {
	total := NewDecode()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			child := NewChildDecode(total)
			for j := 0; j < 1000; j++ {
				child.AddFrame(2)
			}
		}()
	}
	wg.Wait()
	sample := total.GetSample()
	assert.Equal(t, int64(8000), sample.Frames)
	assert.Equal(t, int64(16000), sample.Bytes)
}

func TestConns(t *testing.T) {
	c := NewConns()
	assert.Equal(t, int64(1), c.Add())
	assert.Equal(t, int64(2), c.Add())
	assert.Equal(t, int64(1), c.Release())
	c.Reject()
	assert.Equal(t, ConnsSample{Total: 2, Active: 1, Rejected: 1}, c.GetSample())
}

func TestMeasureRuntime(t *testing.T) {
	rt := MeasureFullRuntime()
	assert.NotNil(t, rt)
	assert.True(t, rt.Go.Count > 0)
	proc := MeasureRuntime()
	assert.True(t, proc.Uptime >= 0)
}
