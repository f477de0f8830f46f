package models

// CaptureFrame is a raw render target read back as 8-bit BGRA rows, top row first
type CaptureFrame struct {
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Pixels       []byte `json:"pixels"`
	FlipVertical bool   `json:"flipVertical"`
}
