//go:build windows

package winproc

import "golang.org/x/sys/windows"

var (
	USER32             = windows.NewLazySystemDLL("user32.dll")
	PrintWindow        = USER32.NewProc("PrintWindow")
	GetDC              = USER32.NewProc("GetDC")
	ReleaseDC          = USER32.NewProc("ReleaseDC")
	SetProcessDpiAware = USER32.NewProc("SetProcessDPIAware")
	GetClientRect      = USER32.NewProc("GetClientRect")
)
