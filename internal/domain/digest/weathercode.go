package digest

// Describe maps a WMO weather interpretation code to a short Japanese description.
func Describe(code int) string {
	switch {
	case code == 0:
		return "快晴"
	case code >= 1 && code <= 2:
		return "晴れ"
	case code == 3:
		return "くもり"
	case code == 45 || code == 48:
		return "霧"
	case code >= 51 && code <= 57:
		return "霧雨"
	case code >= 61 && code <= 67:
		return "雨"
	case code >= 71 && code <= 77:
		return "雪"
	case code >= 80 && code <= 82:
		return "にわか雨"
	case code == 85 || code == 86:
		return "にわか雪"
	case code >= 95 && code <= 99:
		return "雷雨"
	default:
		return "不明"
	}
}
