package config

import (
	"os"
	"sync"
)

var (
	dockerOnce     sync.Once
	insideDocker   bool
	dockerHostname = "host.docker.internal"
)

// IsRunningInDocker reports whether the process runs inside a Docker container,
// detected through /.dockerenv. The result is cached.
func IsRunningInDocker() bool {
	dockerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		insideDocker = err == nil
	})
	return insideDocker
}

// ResolveHostForDocker maps loopback hosts to the Docker host gateway when
// running in a container, so a database or Redis on the developer machine
// stays reachable. Other hosts are returned unchanged.
func ResolveHostForDocker(host string) string {
	if !IsRunningInDocker() {
		return host
	}

	switch host {
	case "localhost", "127.0.0.1":
		return dockerHostname
	}
	return host
}
