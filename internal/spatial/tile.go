package spatial

import "math"

// TileSize is the pixel width/height of a standard slippy-map tile
const TileSize = 256

// TileCoord addresses one map tile at a zoom level
type TileCoord struct {
	X    int
	Y    int
	Zoom int
}

// PixelCoord locates a point inside a specific tile
type PixelCoord struct {
	Tile TileCoord
	X    int // 0..255 within the tile
	Y    int // 0..255 within the tile
}

// LatLonToTile converts a lat/lon to slippy-map tile coordinates (Web Mercator)
func LatLonToTile(lat, lon float64, zoom int) TileCoord {
	scale := math.Exp2(float64(zoom))
	x := int(math.Floor((lon + 180) / 360 * scale))
	latRad := lat * math.Pi / 180
	y := int(math.Floor((1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * scale))
	return TileCoord{X: x, Y: y, Zoom: zoom}
}

// LatLonToPixel converts a lat/lon to the containing tile plus the pixel
// position within that tile
func LatLonToPixel(lat, lon float64, zoom int) PixelCoord {
	scale := math.Exp2(float64(zoom))
	latRad := lat * math.Pi / 180

	worldX := (lon + 180) / 360 * scale
	worldY := (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * scale

	tileX := math.Floor(worldX)
	tileY := math.Floor(worldY)

	return PixelCoord{
		Tile: TileCoord{X: int(tileX), Y: int(tileY), Zoom: zoom},
		X:    int((worldX - tileX) * TileSize),
		Y:    int((worldY - tileY) * TileSize),
	}
}
