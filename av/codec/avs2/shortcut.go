// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package avs2

import "github.com/cnotch/avs2probe/av/codec"

// MetadataIsReady .
func MetadataIsReady(vm *codec.VideoMeta) bool {
	if len(vm.Extradata) == 0 {
		return vm.Width > 0
	}

	if vm.Width == 0 {
		seq, err := SeqHeaderFromExtradata(vm.Extradata)
		if err != nil {
			return false
		}
		FillMetadata(vm, seq)
	}
	return true
}

// FillMetadata copies the sequence header properties into vm.
func FillMetadata(vm *codec.VideoMeta, seq *SeqHeader) {
	vm.Codec = "AVS2"
	vm.Profile = int(seq.Profile)
	vm.Level = int(seq.Level)
	vm.Width = seq.Width
	vm.Height = seq.Height
	vm.BitDepth = seq.OutputBitDepth
	vm.PixelFormat = seq.PixelFormat()
	vm.FrameRateQ = seq.FrameRate()
	vm.FrameRate = vm.FrameRateQ.Float64()
	vm.FixedFrameRate = !vm.FrameRateQ.IsZero()
	vm.SampleAspect = seq.SAR()
	vm.HasBFrames = !seq.LowDelay
	vm.MaxDPBSize = MaxDPBSize(seq)
	vm.DataRate = float64(seq.BitRate) / 1000
}

// SeqHeaderFromExtradata returns the first sequence header of extradata.
func SeqHeaderFromExtradata(extradata []byte) (*SeqHeader, error) {
	units, err := SplitPacket(extradata, nil)
	if err != nil {
		return nil, err
	}
	for _, u := range units {
		if u.StartCode == StartCodeSeqHeader {
			seq := new(SeqHeader)
			if err = seq.Decode(u.Payload(extradata)); err != nil {
				return nil, err
			}
			return seq, nil
		}
	}
	return nil, invalidf("no sequence header in extradata")
}

// IsKeyPicture reports whether the start code begins an intra picture.
func IsKeyPicture(startCode uint32) bool {
	return startCode == StartCodeIntraPic
}
