package dto

// Button is an inline keyboard button carrying an action token.
type Button struct {
	Text string `json:"text"`
	Data string `json:"data"`
}

// Keyboard is a list of button rows.
type Keyboard [][]Button

// View is a rendered menu: message text plus an optional keyboard.
type View struct {
	Text     string   `json:"text"`
	Keyboard Keyboard `json:"keyboard,omitempty"`
}

// Tokens flattens the keyboard into its action tokens, row by row.
func (v View) Tokens() []string {
	tokens := make([]string, 0)
	for _, row := range v.Keyboard {
		for _, b := range row {
			tokens = append(tokens, b.Data)
		}
	}
	return tokens
}
