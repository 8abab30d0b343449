// Package audio plays synthesized speech on the local output device.
package audio
