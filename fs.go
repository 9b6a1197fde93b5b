package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// CarouselFS is an Afero FS that can also resolve absolute paths and the
// home directory, so config discovery works the same against memory in tests.
type CarouselFS interface {
	afero.Fs
	Abs(string) (string, error)
	HomeDir() (string, error)
}

type carouselOSFS struct {
	afero.Fs
}

func newCarouselOSFS() CarouselFS {
	return &carouselOSFS{
		afero.NewOsFs(),
	}
}

func (c *carouselOSFS) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

func (c *carouselOSFS) HomeDir() (string, error) {
	return os.UserHomeDir()
}

type carouselMemFS struct {
	afero.Fs
	home string
}

// NewCarouselMemFS returns an in-memory CarouselFS rooted at "/" with
// home directory "/home".
func NewCarouselMemFS() CarouselFS {
	return &carouselMemFS{
		Fs:   afero.NewMemMapFs(),
		home: "/home",
	}
}

func (c *carouselMemFS) Abs(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	return filepath.Join("/", path), nil
}

func (c *carouselMemFS) HomeDir() (string, error) {
	return c.home, nil
}
