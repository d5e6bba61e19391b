package util

func GetAppName() string {
	return "InstaPilot"
}

func GetAppLogoURL(frontURL string) string {
	return frontURL + "/logo.png"
}
