package proto

import "fmt"

// ShmFormat is a pixel format code reported by wl_shm.format and used in
// wl_shm_pool.create_buffer/wl_shm.create_pool. Values match the wl_shm_format
// enum from wayland.xml; most non-trivial ones are little-endian fourcc codes.
type ShmFormat uint32

const (
	ShmFormatARGB8888 ShmFormat = 0
	ShmFormatXRGB8888 ShmFormat = 1
	ShmFormatC8       ShmFormat = 0x20203843
	ShmFormatRGB332   ShmFormat = 0x38424752
	ShmFormatBGR233   ShmFormat = 0x38524742
	ShmFormatXRGB4444 ShmFormat = 0x32315258
	ShmFormatXBGR4444 ShmFormat = 0x32314258
	ShmFormatRGBX4444 ShmFormat = 0x32315852
	ShmFormatBGRX4444 ShmFormat = 0x32315842
	ShmFormatARGB4444 ShmFormat = 0x32315241
	ShmFormatABGR4444 ShmFormat = 0x32314241
	ShmFormatRGBA4444 ShmFormat = 0x32314152
	ShmFormatBGRA4444 ShmFormat = 0x32314142
	ShmFormatRGB565   ShmFormat = 0x36314752
	ShmFormatBGR565   ShmFormat = 0x36314742
	ShmFormatRGB888   ShmFormat = 0x34324752
	ShmFormatBGR888   ShmFormat = 0x34324742
	ShmFormatXBGR8888 ShmFormat = 0x34324258
	ShmFormatRGBX8888 ShmFormat = 0x34325852
	ShmFormatBGRX8888 ShmFormat = 0x34325842
	ShmFormatABGR8888 ShmFormat = 0x34324241
	ShmFormatRGBA8888 ShmFormat = 0x34324152
	ShmFormatBGRA8888 ShmFormat = 0x34324142
)

var shmFormatNames = map[ShmFormat]string{
	ShmFormatARGB8888: "ARGB8888",
	ShmFormatXRGB8888: "XRGB8888",
	ShmFormatC8:       "C8",
	ShmFormatRGB332:   "RGB332",
	ShmFormatBGR233:   "BGR233",
	ShmFormatXRGB4444: "XRGB4444",
	ShmFormatXBGR4444: "XBGR4444",
	ShmFormatRGBX4444: "RGBX4444",
	ShmFormatBGRX4444: "BGRX4444",
	ShmFormatARGB4444: "ARGB4444",
	ShmFormatABGR4444: "ABGR4444",
	ShmFormatRGBA4444: "RGBA4444",
	ShmFormatBGRA4444: "BGRA4444",
	ShmFormatRGB565:   "RGB565",
	ShmFormatBGR565:   "BGR565",
	ShmFormatRGB888:   "RGB888",
	ShmFormatBGR888:   "BGR888",
	ShmFormatXBGR8888: "XBGR8888",
	ShmFormatRGBX8888: "RGBX8888",
	ShmFormatBGRX8888: "BGRX8888",
	ShmFormatABGR8888: "ABGR8888",
	ShmFormatRGBA8888: "RGBA8888",
	ShmFormatBGRA8888: "BGRA8888",
}

func (f ShmFormat) String() string {
	if name, ok := shmFormatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("0x%08X", uint32(f))
}

// ParseShmFormat decodes a wire value into a ShmFormat, failing rather than
// silently accepting an unrecognized code.
func ParseShmFormat(v uint32) (ShmFormat, error) {
	if _, ok := shmFormatNames[ShmFormat(v)]; !ok {
		return 0, &EnumDecodeError{Enum: "ShmFormat", Value: v}
	}
	return ShmFormat(v), nil
}
