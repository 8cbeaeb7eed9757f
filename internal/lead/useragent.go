package lead

import "strings"

// UASummary is descriptive only. Non-browser agents (curl, scripts) are
// still dispatched to the scoring provider; the provider weighs the UA.
type UASummary struct {
	Length             int      `json:"length,omitempty"`
	ContainsAutomation bool     `json:"contains_automation,omitempty"`
	AutomationKeywords []string `json:"automation_keywords,omitempty"`
	Platform           string   `json:"platform,omitempty"`
	Browser            string   `json:"browser,omitempty"`
}

var automationKeywords = []string{
	"headless", "selenium", "webdriver", "puppeteer",
	"playwright", "phantom", "jsdom", "nightmare",
	"chrome-headless", "automated", "bot", "crawler",
	"curl", "python-requests", "wget",
}

// SummarizeUA extracts platform, browser, and automation hints from a raw
// user-agent string.
func SummarizeUA(userAgent string) UASummary {
	summary := UASummary{Length: len(userAgent)}

	lowerUA := strings.ToLower(userAgent)
	for _, keyword := range automationKeywords {
		if strings.Contains(lowerUA, keyword) {
			summary.ContainsAutomation = true
			summary.AutomationKeywords = append(summary.AutomationKeywords, keyword)
		}
	}

	summary.Platform = extractPlatform(lowerUA)
	summary.Browser = extractBrowser(lowerUA)
	return summary
}

func extractPlatform(lowerUA string) string {
	// Mobile platforms first; iOS UAs contain "Mac OS X".
	if strings.Contains(lowerUA, "iphone") || strings.Contains(lowerUA, "ipad") {
		return "iOS"
	} else if strings.Contains(lowerUA, "android") {
		return "Android"
	} else if strings.Contains(lowerUA, "windows") {
		return "Windows"
	} else if strings.Contains(lowerUA, "mac") {
		return "macOS"
	} else if strings.Contains(lowerUA, "linux") {
		return "Linux"
	}
	return ""
}

func extractBrowser(lowerUA string) string {
	if strings.Contains(lowerUA, "chrome") && !strings.Contains(lowerUA, "edge") {
		return "Chrome"
	} else if strings.Contains(lowerUA, "firefox") {
		return "Firefox"
	} else if strings.Contains(lowerUA, "safari") && !strings.Contains(lowerUA, "chrome") {
		return "Safari"
	} else if strings.Contains(lowerUA, "edge") {
		return "Edge"
	}
	return ""
}
