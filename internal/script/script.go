package script

import (
	"os"
	"strings"
)

// Flavor is a launch script dialect.
type Flavor int

const (
	// Shell creates start.sh for POSIX hosts.
	// The file is written executable.
	Shell Flavor = iota

	// Batch creates start.bat for Windows.
	// Lines end in CRLF and the window pauses after the server exits.
	Batch
)

// FileName returns the script's file name.
func (f Flavor) FileName() string {
	if f == Batch {
		return "start.bat"
	}
	return "start.sh"
}

// Mode returns the permission bits the script is written with.
func (f Flavor) Mode() os.FileMode {
	if f == Batch {
		return 0o644
	}
	return 0o755
}

func (f Flavor) String() string {
	if f == Batch {
		return "batch"
	}
	return "shell"
}

// Creator renders server launch scripts.
//
// Example:
//
//	creator := NewCreator(Shell, "-Xmx2G")
//	content := creator.Render("quilt-server-launch.jar")
//
//	// Result:
//	// #!/usr/bin/env sh
//	// java -Xmx2G -jar quilt-server-launch.jar nogui "$@"
type Creator struct {
	flavor   Flavor
	javaArgs string
}

// NewCreator creates a new Creator. javaArgs is inserted verbatim between
// "java" and "-jar".
func NewCreator(flavor Flavor, javaArgs string) *Creator {
	return &Creator{
		flavor:   flavor,
		javaArgs: strings.TrimSpace(javaArgs),
	}
}

// Flavor returns the dialect the Creator renders.
func (c *Creator) Flavor() Flavor {
	return c.flavor
}

// Render returns the script content. jar is referenced relative to the
// script, so the script must live next to it.
func (c *Creator) Render(jar string) string {
	switch c.flavor {
	case Batch:
		return c.renderBatch(jar)
	default:
		return c.renderShell(jar)
	}
}

func (c *Creator) command(jar string) string {
	var sb strings.Builder
	sb.WriteString("java ")
	if c.javaArgs != "" {
		sb.WriteString(c.javaArgs)
		sb.WriteString(" ")
	}
	sb.WriteString("-jar ")
	sb.WriteString(quote(jar, c.flavor))
	sb.WriteString(" nogui")
	return sb.String()
}

func (c *Creator) renderShell(jar string) string {
	var sb strings.Builder
	sb.WriteString("#!/usr/bin/env sh\n")
	sb.WriteString("cd \"$(dirname \"$0\")\"\n")
	sb.WriteString(c.command(jar))
	sb.WriteString(" \"$@\"\n")
	return sb.String()
}

func (c *Creator) renderBatch(jar string) string {
	var sb strings.Builder
	sb.WriteString("@echo off\r\n")
	sb.WriteString("cd /d \"%~dp0\"\r\n")
	sb.WriteString(c.command(jar))
	sb.WriteString(" %*\r\n")
	sb.WriteString("pause\r\n")
	return sb.String()
}

func quote(s string, flavor Flavor) string {
	if !strings.ContainsAny(s, " \t\"'$&;|()%") {
		return s
	}
	if flavor == Batch {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
