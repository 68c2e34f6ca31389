// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package avs2

// AVS2 起始码（00 00 01 xx）
const (
	StartCodeSeqHeader uint32 = 0x000001B0 // 序列头
	StartCodeSeqEnd    uint32 = 0x000001B1 // 序列结束
	StartCodeUserData  uint32 = 0x000001B2 // 用户数据
	StartCodeIntraPic  uint32 = 0x000001B3 // 帧内图像头
	StartCodeExtension uint32 = 0x000001B5 // 扩展
	StartCodeInterPic  uint32 = 0x000001B6 // 帧间图像头
	StartCodeVideoEdit uint32 = 0x000001B7 // 视频编辑
	StartCodeSliceMin  uint32 = 0x00000100 // 最小片起始码
	StartCodeSliceMax  uint32 = 0x0000018F // 最大片起始码
)

// IsSliceStartCode reports whether sc starts a slice.
func IsSliceStartCode(sc uint32) bool {
	return sc >= StartCodeSliceMin && sc <= StartCodeSliceMax
}

// IsValidStartCode reports whether sc is a start code the decoder accepts.
func IsValidStartCode(sc uint32) bool {
	switch sc {
	case StartCodeSeqHeader, StartCodeSeqEnd, StartCodeUserData, StartCodeIntraPic,
		StartCodeExtension, StartCodeInterPic, StartCodeVideoEdit:
		return true
	}
	return IsSliceStartCode(sc)
}

// IsPictureStartCode reports whether sc starts an intra or inter picture header.
func IsPictureStartCode(sc uint32) bool {
	return sc == StartCodeIntraPic || sc == StartCodeInterPic
}

// 容量限制
const (
	MaxRefCount = 7  // 最大参考帧数
	MaxDPBCount = 16 // DPB 槽位数，包括当前帧
	MaxRCSCount = 32 // 序列头中 RCS 的最大数量
	MiniSize    = 8  // 最小编码单元尺寸
)

// ExtensionType 扩展类型
type ExtensionType uint8

// 扩展类型常量
const (
	ExtSeqDisplay    ExtensionType = 0x2
	ExtTemporalScale ExtensionType = 0x3
	ExtCopyright     ExtensionType = 0x4
	ExtPicDisplay    ExtensionType = 0x7
	ExtMastering     ExtensionType = 0xa // mastering_display_and_content_metadata_extension
	ExtCameraParam   ExtensionType = 0xb
	ExtROIParam      ExtensionType = 0xc
)

var extensionNames = map[ExtensionType]string{
	ExtSeqDisplay:    "sequence_display",
	ExtTemporalScale: "temporal_scalability",
	ExtCopyright:     "copyright",
	ExtPicDisplay:    "picture_display",
	ExtMastering:     "mastering_display_and_content_metadata",
	ExtCameraParam:   "camera_parameters",
	ExtROIParam:      "roi_parameters",
}

func (t ExtensionType) String() string {
	if name, ok := extensionNames[t]; ok {
		return name
	}
	return "reserved"
}

// Profile 档次
type Profile uint8

// 档次常量
const (
	ProfileMainPicture Profile = 0x12
	ProfileMain        Profile = 0x20
	ProfileMain10      Profile = 0x22
)

func (p Profile) String() string {
	switch p {
	case ProfileMainPicture:
		return "Main Picture"
	case ProfileMain:
		return "Main"
	case ProfileMain10:
		return "Main 10"
	default:
		return "unknown"
	}
}

// Level 级别
type Level uint8

// 级别常量，命名为 Level<级>_<子级>_<帧率>
const (
	LevelForbidden Level = 0x00

	Level2_0_15 Level = 0x10 // 352x288, 1500Kbps
	Level2_0_30 Level = 0x12 // 352x288, 2000Kbps
	Level2_0_60 Level = 0x14 // 352x288, 2500Kbps

	Level4_0_30 Level = 0x20 // 720x576,  6Mbps, 30fps
	Level4_0_60 Level = 0x22 // 720x576, 10Mbps, 60fps

	Level6_0_30  Level = 0x40 // 2048x1152,  12Mbps,  30fps
	Level6_2_30  Level = 0x42 // 2048x1152,  30Mbps,  30fps
	Level6_0_60  Level = 0x44 // 2048x1152,  20Mbps,  60fps
	Level6_2_60  Level = 0x46 // 2048x1152,  50Mbps,  60fps
	Level6_0_120 Level = 0x48 // 2048x1152,  25Mbps, 120fps
	Level6_2_120 Level = 0x4a // 2048x1152, 100Mbps, 120fps

	Level8_0_30  Level = 0x50 // 4096x2304,  25Mbps,  30fps
	Level8_2_30  Level = 0x52 // 4096x2304, 100Mbps,  30fps
	Level8_0_60  Level = 0x54 // 4096x2304,  40Mbps,  60fps
	Level8_2_60  Level = 0x56 // 4096x2304, 160Mbps,  60fps
	Level8_0_120 Level = 0x58 // 4096x2304,  60Mbps, 120fps
	Level8_2_120 Level = 0x5a // 4096x2304, 240Mbps, 120fps

	Level10_0_30  Level = 0x60 // 8192x4608,  60Mbps,  30fps
	Level10_2_30  Level = 0x62 // 8192x4608, 240Mbps,  30fps
	Level10_0_60  Level = 0x64 // 8192x4608, 120Mbps,  60fps
	Level10_2_60  Level = 0x66 // 8192x4608, 480Mbps,  60fps
	Level10_0_120 Level = 0x68 // 8192x4608, 240Mbps, 120fps
	Level10_2_120 Level = 0x6a // 8192x4608, 800Mbps, 120fps
)

// ChromaFormat 色度格式，仅支持 4:2:0
type ChromaFormat uint8

// 色度格式常量
const (
	Chroma400 ChromaFormat = 0
	Chroma420 ChromaFormat = 1
	Chroma422 ChromaFormat = 2
)

// AspectRatio 宽高比代码
type AspectRatio uint8

// 宽高比常量
const (
	SAR1x1     AspectRatio = 1 // SAR 1:1
	DAR4x3     AspectRatio = 2 // DAR 4:3
	DAR16x9    AspectRatio = 3 // DAR 16:9
	DAR221x100 AspectRatio = 4 // DAR 2.21:1
)

// PicCodingType 帧间图像编码类型
type PicCodingType uint8

// 帧间图像编码类型常量
const (
	CodingTypeP PicCodingType = 0x1
	CodingTypeB PicCodingType = 0x2
	CodingTypeF PicCodingType = 0x3
)

// PicType 图像类型
type PicType int8

// 图像类型常量
const (
	PicUnknown PicType = -1
	PicI       PicType = 0 // intra, ScenePicFlag:0
	PicP       PicType = 1 // P, ScenePredFlag:0
	PicB       PicType = 2
	PicF       PicType = 3
	PicS       PicType = 4 // P, ScenePredFlag:1
	PicG       PicType = 5 // intra, ScenePicFlag:1, SceneOutFlag:1
	PicGB      PicType = 6 // intra, ScenePicFlag:1, SceneOutFlag:0
)

var picTypeNames = [...]string{"I", "P", "B", "F", "S", "G", "GB"}

func (t PicType) String() string {
	if t >= PicI && t <= PicGB {
		return picTypeNames[t]
	}
	return "unknown"
}

// MarshalText marshals the PicType to text.
func (t PicType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// 图像结构
const (
	FieldSeparated   = 0
	FieldInterleaved = 1
)
