package ui

import "image"

// Screen coordinates for a 1280x800 borderless client.
const (
	ScreenWidth  = 1280
	ScreenHeight = 800

	// Main menu "Play" entry.
	JoinButtonX = 175
	JoinButtonY = 260

	// "Leave world" entry in the map's options menu (opened with C).
	LeaveButtonX = 1200
	LeaveButtonY = 100

	// Map centre used as the respawn spiral origin.
	SpiralOriginX = 640
	SpiralOriginY = 400

	// Parking spot for the cursor before text reads.
	IdleCursorX = 1000
	IdleCursorY = 500
)

func JoinButton() image.Point {
	return image.Pt(JoinButtonX, JoinButtonY)
}

func LeaveButton() image.Point {
	return image.Pt(LeaveButtonX, LeaveButtonY)
}

func IdleCursor() image.Point {
	return image.Pt(IdleCursorX, IdleCursorY)
}

// TextRegion is the part of the screen read for prompts and HUD text.
func TextRegion() image.Rectangle {
	return image.Rect(0, 0, ScreenWidth, ScreenHeight)
}
