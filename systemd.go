package main

import (
	_ "embed"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"text/template"
)

//go:embed carousel.service
var carouselServiceEmbed string

var carouselServiceTemplate = template.Must(template.New("carousel.service").Parse(carouselServiceEmbed))

type CarouselServiceParams struct {
	BinaryPath string
	User       string
	ConfigPath string
}

func (p CarouselServiceParams) Render(w io.Writer) error {
	return carouselServiceTemplate.Execute(w, p)
}

// SystemdServiceFile writes a unit file that runs the current executable
// as the current user.
func SystemdServiceFile(w io.Writer, configPath string) error {
	binary, err := os.Executable()
	if err != nil {
		return err
	}

	u, err := user.Current()
	if err != nil {
		return err
	}

	if configPath != "" {
		if configPath, err = filepath.Abs(configPath); err != nil {
			return err
		}
	}

	return CarouselServiceParams{
		BinaryPath: binary,
		User:       u.Username,
		ConfigPath: configPath,
	}.Render(w)
}
