package tui

import (
	"log"
	"os/exec"
	"runtime"
)

// OpenURL hands url to the desktop's browser launcher without waiting
// for it.
func OpenURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("[WARN] Opening %s: %v", url, err)
		return
	}
	go cmd.Wait()
}
