package entity

// TextStyle describes how the app description is rendered.
type TextStyle struct {
	Color     string `json:"color" bson:"color"`
	Size      string `json:"size" bson:"size"`
	Weight    string `json:"weight" bson:"weight"`
	Italic    bool   `json:"italic" bson:"italic"`
	Underline bool   `json:"underline" bson:"underline"`
	Align     string `json:"align" bson:"align"`
}

// AppConfig is the singleton branding document broadcast to every session.
type AppConfig struct {
	AppName          string    `json:"appName" bson:"appName"`
	LogoURL          string    `json:"logoUrl" bson:"logoUrl"`
	LogoWidth        int       `json:"logoWidth" bson:"logoWidth"`
	PrimaryColor     string    `json:"primaryColor" bson:"primaryColor"`
	SecondaryColor   string    `json:"secondaryColor" bson:"secondaryColor"`
	AppDescription   string    `json:"appDescription" bson:"appDescription"`
	DescriptionStyle TextStyle `json:"descriptionStyle" bson:"descriptionStyle"`
}

// DefaultAppConfig is what a fresh install and a factory reset use.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		AppName:        "Guia Local",
		LogoWidth:      120,
		PrimaryColor:   "#0f766e",
		SecondaryColor: "#f59e0b",
		AppDescription: "Encontre comércios e serviços perto de você",
		DescriptionStyle: TextStyle{
			Color:  "#374151",
			Size:   "16px",
			Weight: "400",
			Align:  "center",
		},
	}
}
