package chartjs

// Subset of the chart.js configuration object used by the price chart.

type Chart struct {
	Type    string       `json:"type"`
	Data    ChartData    `json:"data"`
	Options ChartOptions `json:"options"`
}

type ChartData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

type ChartDataset struct {
	Label       string     `json:"label,omitempty"`
	Data        []*float64 `json:"data"`
	BorderWidth int        `json:"borderWidth"`
	BorderColor string     `json:"borderColor"`
	BorderDash  []int      `json:"borderDash,omitempty"`
	Fill        bool       `json:"fill"`
	Stepped     bool       `json:"stepped,omitempty"`
	PointRadius *int       `json:"pointRadius,omitempty"`
	YAxisID     string     `json:"yAxisID,omitempty"`
}

type ChartOptions struct {
	Responsive  bool                  `json:"responsive"`
	Interaction ChartInteraction      `json:"interaction"`
	Plugins     ChartPlugins          `json:"plugins"`
	Scales      map[string]ChartScale `json:"scales"`
}

type ChartInteraction struct {
	Mode      string `json:"mode"`
	Intersect bool   `json:"intersect"`
}

type ChartPlugins struct {
	Legend ChartLegend `json:"legend"`
	Title  ChartTitle  `json:"title"`
}

type ChartLegend struct {
	Display  bool   `json:"display"`
	Position string `json:"position,omitempty"`
}

type ChartTitle struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

type ChartScale struct {
	Type     string          `json:"type"`
	Display  bool            `json:"display"`
	Position string          `json:"position"`
	Min      *float64        `json:"min,omitempty"`
	Max      *float64        `json:"max,omitempty"`
	Title    ChartScaleTitle `json:"title"`
}

type ChartScaleTitle struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
	Color   string `json:"color,omitempty"`
}
