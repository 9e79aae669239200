// Package tty implements a display driver for ANSI terminals, using the
// terminal in raw mode.
//
// Keys are read from the KEY_LAYOUT of the emulator package. Each press
// toggles the key, so that it can be held down on a terminal that only
// reports presses. Space quits.
package tty
