package notify

import (
	"os/exec"
	"runtime"

	"github.com/billmal071/epubpress/internal/config"
)

// Notification types
const (
	TypeSuccess = "success"
	TypeError   = "error"
	TypeInfo    = "info"
)

// deliver is swapped out in tests
var deliver = func(title, message, notifyType string) {
	go sendNotification(title, message, notifyType)
}

// Send sends a desktop notification if enabled in config
func Send(title, message, notifyType string) {
	if !config.Get().Notifications.Enabled {
		return
	}
	deliver(title, message, notifyType)
}

// BuildComplete announces a finished book build
func BuildComplete(title string) {
	Send("Book Ready", orUntitled(title), TypeSuccess)
}

// BuildFailed announces a build the service gave up on
func BuildFailed(title, reason string) {
	msg := orUntitled(title)
	if reason != "" {
		msg += ": " + reason
	}
	Send("Build Failed", msg, TypeError)
}

// Delivered announces a book sent to an email address
func Delivered(title, email string) {
	Send("Book Sent", orUntitled(title)+" -> "+email, TypeInfo)
}

func orUntitled(title string) string {
	if title == "" {
		return "Untitled book"
	}
	return title
}

func sendNotification(title, message, notifyType string) {
	switch runtime.GOOS {
	case "linux":
		sendLinuxNotification(title, message, notifyType)
	case "darwin":
		sendMacNotification(title, message)
	case "windows":
		sendWindowsNotification(title, message)
	}
}

func sendLinuxNotification(title, message, notifyType string) {
	// Try notify-send (most common on Linux)
	icon := "dialog-information"
	switch notifyType {
	case TypeSuccess:
		icon = "dialog-ok"
	case TypeError:
		icon = "dialog-error"
	}

	cmd := exec.Command("notify-send", "-i", icon, "-a", "epubpress", title, message)
	cmd.Run()
}

func sendMacNotification(title, message string) {
	script := `display notification "` + escapeAppleScript(message) + `" with title "` + escapeAppleScript(title) + `"`
	cmd := exec.Command("osascript", "-e", script)
	cmd.Run()
}

func sendWindowsNotification(title, message string) {
	// Use PowerShell for Windows notifications
	script := `
	[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
	[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null
	$template = '<toast><visual><binding template="ToastText02"><text id="1">` + escapeXML(title) + `</text><text id="2">` + escapeXML(message) + `</text></binding></visual></toast>'
	$xml = New-Object Windows.Data.Xml.Dom.XmlDocument
	$xml.LoadXml($template)
	$toast = [Windows.UI.Notifications.ToastNotification]::new($xml)
	[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("epubpress").Show($toast)
	`
	cmd := exec.Command("powershell", "-Command", script)
	cmd.Run()
}

func escapeAppleScript(s string) string {
	// Escape backslashes and double quotes for AppleScript
	result := ""
	for _, c := range s {
		if c == '\\' || c == '"' {
			result += "\\"
		}
		result += string(c)
	}
	return result
}

func escapeXML(s string) string {
	// Escape XML special characters
	result := ""
	for _, c := range s {
		switch c {
		case '<':
			result += "&lt;"
		case '>':
			result += "&gt;"
		case '&':
			result += "&amp;"
		case '"':
			result += "&quot;"
		case '\'':
			result += "&apos;"
		default:
			result += string(c)
		}
	}
	return result
}
