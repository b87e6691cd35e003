package server

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"edit-relay/internal/config"
)

func printStartupBanner(cfg config.Config) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	gray := color.New(color.FgHiBlack)

	cyan.Println("edit-relay")
	green.Printf("  listening  :%d\n", cfg.Server.Port)
	fmt.Printf("  provider   %s\n", cfg.Upstream.Endpoint)
	fmt.Printf("  model      %s\n", cfg.Upstream.Model)
	gray.Printf("  origins    %s\n", strings.Join(cfg.Server.AllowedOrigins, ", "))
	gray.Printf("  routes     POST /edit, POST /hf-proxy.php, GET /health, GET /metrics\n")
}
