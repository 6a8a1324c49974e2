//go:build windows

package game

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/fo76bot/fo76bot/internal/utils/winproc"
)

type bmpInfoHeader struct {
	BiSize          uint32
	BiWidth         int32
	BiHeight        int32
	BiPlanes        uint16
	BiBitCount      uint16
	BiCompression   uint32
	BiSizeImage     uint32
	BiXPelsPerMeter int32
	BiYPelsPerMeter int32
	BiClrUsed       uint32
	BiClrImportant  uint32
}

type bitmapInfo struct{ Header bmpInfoHeader }

type rect struct{ Left, Top, Right, Bottom int32 }

func clientSize(hwnd uintptr) (width, height int) {
	var rc rect
	winproc.GetClientRect.Call(hwnd, uintptr(unsafe.Pointer(&rc)))
	return int(rc.Right - rc.Left), int(rc.Bottom - rc.Top)
}

// printWindow grabs the client area of hwnd even when it is partly covered.
func printWindow(hwnd uintptr) (*image.RGBA, error) {
	width, height := clientSize(hwnd)
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("empty client area %dx%d", width, height)
	}

	hdcScreen, _, _ := winproc.GetDC.Call(0)
	if hdcScreen == 0 {
		return nil, fmt.Errorf("GetDC failed")
	}
	defer winproc.ReleaseDC.Call(0, hdcScreen)

	hdcMem, _, _ := winproc.CreateCompatibleDC.Call(hdcScreen)
	if hdcMem == 0 {
		return nil, fmt.Errorf("CreateCompatibleDC failed")
	}
	defer winproc.DeleteDC.Call(hdcMem)

	// Top-down 32 bpp DIB
	bi := bitmapInfo{Header: bmpInfoHeader{
		BiSize:     40,
		BiWidth:    int32(width),
		BiHeight:   -int32(height),
		BiPlanes:   1,
		BiBitCount: 32,
	}}
	var bitsPtr uintptr
	hbm, _, _ := winproc.CreateDIBSection.Call(hdcScreen, uintptr(unsafe.Pointer(&bi)), 0, uintptr(unsafe.Pointer(&bitsPtr)), 0, 0)
	if hbm == 0 || bitsPtr == 0 {
		return nil, fmt.Errorf("CreateDIBSection failed")
	}
	defer winproc.DeleteObject.Call(hbm)
	winproc.SelectObject.Call(hdcMem, hbm)

	// PW_CLIENTONLY|PW_RENDERFULLCONTENT
	_, _, _ = winproc.PrintWindow.Call(hwnd, hdcMem, 3)
	winproc.GdiFlush.Call()

	src := unsafe.Slice((*byte)(unsafe.Pointer(bitsPtr)), width*height*4)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, src)

	// BGRA to RGBA
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+2] = img.Pix[i+2], img.Pix[i]
	}

	return img, nil
}
