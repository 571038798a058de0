package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	sourcePath = "./cmd/app/main.go"
	outputDir  = "./build"
	binaryName = "plcgw"
	// versionVar - переменная версии, которая подставляется в логгер
	versionVar = "github.com/chuhuyvt/FS-Project/internal/app.Version"
	// sampleConfig кладётся рядом с бинарниками, сервис ищет config.yaml в рабочем каталоге
	sampleConfig = "config.yaml"
)

type buildTarget struct {
	GOOS   string
	GOARCH string
	Prefix string
}

var targets = []buildTarget{
	{GOOS: "windows", GOARCH: "amd64", Prefix: "windows"},
	{GOOS: "linux", GOARCH: "amd64", Prefix: "linux"},
	{GOOS: "linux", GOARCH: "arm64", Prefix: "linux_arm64"},
	{GOOS: "linux", GOARCH: "arm", Prefix: "linux_armv7"},
	{GOOS: "darwin", GOARCH: "amd64", Prefix: "macos"},
	{GOOS: "darwin", GOARCH: "arm64", Prefix: "macos_arm64"},
}

func (t buildTarget) platform() string {
	return t.GOOS + "/" + t.GOARCH
}

func (t buildTarget) outputName() string {
	name := t.Prefix + "_" + binaryName
	if t.GOOS == "windows" {
		name += ".exe"
	}
	return name
}

// selectTargets оставляет платформы из аргументов (например, linux/arm64); без аргументов - все
func selectTargets(args []string) ([]buildTarget, error) {
	if len(args) == 0 {
		return targets, nil
	}
	var selected []buildTarget
	for _, arg := range args {
		found := false
		for _, t := range targets {
			if t.platform() == arg || t.GOOS == arg {
				selected = append(selected, t)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown platform %q", arg)
		}
	}
	return selected, nil
}

func main() {
	selected, err := selectTargets(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	ldflags := fmt.Sprintf("-s -w -X %s=%s", versionVar, version)

	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		log.Fatalf("Failed to create directory %s: %v", outputDir, err)
	}

	names := make([]string, 0, len(selected))
	for _, t := range selected {
		names = append(names, t.platform())
	}
	log.Printf("Building %s version %s for %s", binaryName, version, strings.Join(names, ", "))

	for _, target := range selected {
		outputPath := filepath.Join(outputDir, target.outputName())
		cmd := exec.Command("go", "build", "-trimpath", "-ldflags", ldflags, "-o", outputPath, sourcePath)
		cmd.Env = append(os.Environ(),
			"GOOS="+target.GOOS,
			"GOARCH="+target.GOARCH,
			"CGO_ENABLED=0",
		)

		output, err := cmd.CombinedOutput()
		if err != nil {
			log.Fatalf("Build for %s failed: %v\nOutput:\n%s", target.platform(), err, string(output))
		}
		log.Printf("Built %s", outputPath)
	}

	if err := copyFile(sampleConfig, filepath.Join(outputDir, sampleConfig)); err != nil {
		log.Printf("Sample config not copied: %v", err)
	}
	log.Println("All builds completed successfully!")
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
