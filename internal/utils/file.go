package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// imageExts are the source extensions picked up by discovery, lower case without the dot
var imageExts = []string{"jpg", "jpeg", "png", "tif", "tiff", "psd", "bmp", "gif", "webp"}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// GetFileExtension returns the file extension without the dot
func GetFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// IsImageFile checks if a file has an image extension
func IsImageFile(filename string) bool {
	return slices.Contains(imageExts, GetFileExtension(filename))
}

// ImageFiles lazily yields the image files under root in lexical order.
// Subdirectories are only descended when recurse is set. A walk error is yielded once and ends the sequence.
func ImageFiles(root string, recurse bool) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if !DirExists(root) {
			yield("", &fs.PathError{Op: "open", Path: root, Err: fs.ErrNotExist})
			return
		}

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && !recurse {
					return filepath.SkipDir
				}
				return nil
			}
			if !IsImageFile(path) {
				return nil
			}
			if !yield(path, nil) {
				return errStop
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			yield("", err)
		}
	}
}

var errStop = errors.New("stop walking")

// SingleImage yields path alone, or an error when it is not an existing image file
func SingleImage(path string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		switch {
		case !FileExists(path):
			yield("", &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist})
		case !IsImageFile(path):
			yield("", fmt.Errorf("%s is not a supported image file", path))
		default:
			yield(path, nil)
		}
	}
}

// ListImageFiles collects ImageFiles into a slice
func ListImageFiles(root string, recurse bool) ([]string, error) {
	var files []string
	for path, err := range ImageFiles(root, recurse) {
		if err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	return files, nil
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// DirExists checks if a directory exists
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && info.IsDir()
}
