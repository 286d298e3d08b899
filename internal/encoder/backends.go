package encoder

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
	"rsc.io/qr"
)

// GoQRCode builds matrices with github.com/skip2/go-qrcode
type GoQRCode struct{}

func (GoQRCode) Name() string { return BackendGoQRCode }

func (GoQRCode) Matrix(payload string, level Level) (Matrix, error) {
	q, err := qrcode.New(payload, goQRCodeLevel(level))
	if err != nil {
		return nil, err
	}
	// quiet zone is added by the renderer so the margin is configurable
	q.DisableBorder = true
	return Matrix(q.Bitmap()), nil
}

func goQRCodeLevel(l Level) qrcode.RecoveryLevel {
	switch l {
	case LevelL:
		return qrcode.Low
	case LevelQ:
		return qrcode.High
	case LevelH:
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

// RSCQR builds matrices with rsc.io/qr
type RSCQR struct{}

func (RSCQR) Name() string { return BackendRSC }

func (RSCQR) Matrix(payload string, level Level) (Matrix, error) {
	code, err := qr.Encode(payload, rscLevel(level))
	if err != nil {
		return nil, err
	}

	n := code.Size
	if n == 0 {
		return nil, fmt.Errorf("rsc.io/qr returned an empty code")
	}
	m := make(Matrix, n)
	for y := 0; y < n; y++ {
		m[y] = make([]bool, n)
		for x := 0; x < n; x++ {
			m[y][x] = code.Black(x, y)
		}
	}
	return m, nil
}

func rscLevel(l Level) qr.Level {
	switch l {
	case LevelL:
		return qr.L
	case LevelQ:
		return qr.Q
	case LevelH:
		return qr.H
	default:
		return qr.M
	}
}
