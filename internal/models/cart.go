package models

type Cart struct {
	UserID string     `json:"user_id"`
	Items  []CartItem `json:"items"`
}

type CartItem struct {
	ProductID   string       `json:"product_id"`
	Name        string       `json:"name,omitempty"`
	Price       float64      `json:"price"` // prix unitaire résolu depuis le catalogue
	Quantity    int          `json:"quantity"`
	Size        string       `json:"size"`
	Color       string       `json:"color,omitempty"`
	Format      string       `json:"format,omitempty"`
	FrameColor  string       `json:"frame_color,omitempty"`
	ImageURL    string       `json:"image_url,omitempty"`
	CustomPrint *CustomPrint `json:"custom_print,omitempty"`
}

// CustomPrint : impression personnalisée (visuel fourni par le client)
type CustomPrint struct {
	ImageURL     string `json:"image_url"`
	Instructions string `json:"instructions,omitempty"`
	ArtStyle     string `json:"art_style,omitempty"`
}
