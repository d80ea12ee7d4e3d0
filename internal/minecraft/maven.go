package minecraft

import (
	"fmt"
	"strings"
)

// MavenPath converts "group:artifact:version[:classifier]" into the
// repository-relative jar path, e.g. "org/lwjgl/lwjgl/3.2.2/lwjgl-3.2.2.jar".
func MavenPath(name string) (string, error) {
	parts := strings.Split(name, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return "", fmt.Errorf("invalid maven coordinate %q", name)
	}
	for _, p := range parts {
		if p == "" {
			return "", fmt.Errorf("invalid maven coordinate %q", name)
		}
	}

	group := strings.ReplaceAll(parts[0], ".", "/")
	artifact, version := parts[1], parts[2]

	file := artifact + "-" + version
	if len(parts) == 4 {
		file += "-" + parts[3]
	}

	return group + "/" + artifact + "/" + version + "/" + file + ".jar", nil
}
