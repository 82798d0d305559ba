// Package image runs flash sessions against persisted flash images.
//
// Each operation loads the image into a fresh device from the factory,
// drives it through a flash.Controller, and for mutating operations saves
// the device contents back through the domain.ImageStore.
package image
