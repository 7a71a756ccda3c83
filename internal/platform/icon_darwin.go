//go:build darwin

package platform

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa
#import <Cocoa/Cocoa.h>
#include <stdlib.h>

void* iconForPath(const char* path) {
    NSString* p = [NSString stringWithUTF8String:path];
    NSImage* icon = [[NSWorkspace sharedWorkspace] iconForFile:p];
    [icon retain];
    return (void*)icon;
}

void iconDimensions(void* imagePtr, int* width, int* height) {
    NSImage* image = (NSImage*)imagePtr;
    NSSize size = [image size];
    *width = (int)size.width;
    *height = (int)size.height;
}

void copyIconPixels(void* imagePtr, unsigned char* buffer, int width, int height) {
    NSImage* image = (NSImage*)imagePtr;
    NSBitmapImageRep* bitmap = [[NSBitmapImageRep alloc]
        initWithBitmapDataPlanes:NULL
        pixelsWide:width
        pixelsHigh:height
        bitsPerSample:8
        samplesPerPixel:4
        hasAlpha:YES
        isPlanar:NO
        colorSpaceName:NSDeviceRGBColorSpace
        bytesPerRow:width * 4
        bitsPerPixel:32];

    [NSGraphicsContext saveGraphicsState];
    [NSGraphicsContext setCurrentContext:[NSGraphicsContext graphicsContextWithBitmapImageRep:bitmap]];
    [image drawInRect:NSMakeRect(0, 0, width, height)
        fromRect:NSZeroRect
        operation:NSCompositingOperationCopy
        fraction:1.0];
    [NSGraphicsContext restoreGraphicsState];

    memcpy(buffer, [bitmap bitmapData], width * height * 4);
    [bitmap release];
}

void releaseIcon(void* iconPtr) {
    if (iconPtr) {
        [(NSImage*)iconPtr release];
    }
}

int setIconForPath(const char* path, const unsigned char* pngBytes, int pngLen) {
    NSString* p = [NSString stringWithUTF8String:path];
    NSData* data = [NSData dataWithBytes:pngBytes length:pngLen];
    NSImage* icon = [[NSImage alloc] initWithData:data];
    if (icon == nil) {
        return 0;
    }
    BOOL ok = [[NSWorkspace sharedWorkspace] setIcon:icon forFile:p options:0];
    [icon release];
    return ok ? 1 : 0;
}
*/
import "C"

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"unsafe"
)

// IconForPath reads the icon the desktop shows for path, rendered at
// its natural size.
func IconForPath(path string) (image.Image, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	iconPtr := C.iconForPath(cPath)
	if iconPtr == nil {
		return nil, fmt.Errorf("platform: no icon for %s", path)
	}
	defer C.releaseIcon(iconPtr)

	var width, height C.int
	C.iconDimensions(iconPtr, &width, &height)
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("platform: zero-sized icon for %s", path)
	}

	buffer := make([]byte, int(width)*int(height)*4)
	C.copyIconPixels(iconPtr, (*C.uchar)(unsafe.Pointer(&buffer[0])), width, height)

	img := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	copy(img.Pix, buffer)
	return img, nil
}

// SetIconForPath attaches img as the custom icon of path.
func SetIconForPath(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("platform: encode icon: %w", err)
	}
	data := buf.Bytes()

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	ok := C.setIconForPath(cPath, (*C.uchar)(unsafe.Pointer(&data[0])), C.int(len(data)))
	if ok == 0 {
		return fmt.Errorf("platform: set icon for %s failed", path)
	}
	return nil
}
