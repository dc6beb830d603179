package chartjs

import (
	"math"
)

const (
	ColorYellow = "#ffc107d4"
	ColorRed    = "#f44336d4"
	ColorGreen  = "#4caf50d4"
)

const YAxisPrice = "YAxis1"

func NewChart(title string, labels []string) Chart {
	chart := Chart{
		Type: "line",
		Data: ChartData{
			Labels:   labels,
			Datasets: []ChartDataset{},
		},
		Options: ChartOptions{
			Responsive:  true,
			Interaction: ChartInteraction{Mode: "index", Intersect: false},
			Plugins: ChartPlugins{
				Legend: ChartLegend{Display: true, Position: "bottom"},
				Title:  ChartTitle{Display: false},
			},
			Scales: map[string]ChartScale{
				YAxisPrice: {
					Type:     "linear",
					Display:  true,
					Position: "left",
					Title:    ChartScaleTitle{Display: true, Text: "", Color: ColorYellow}},
			},
		},
	}

	if title != "" {
		chart.Options.Plugins.Title = ChartTitle{Display: true, Text: title}
	}

	return chart
}

// WithDataset appends a line. Data must have one value per label, nil for a gap.
func (c Chart) WithDataset(label, color string, data []*float64) Chart {
	c.Data.Datasets = append(c.Data.Datasets, ChartDataset{
		Label:       label,
		Data:        data,
		BorderWidth: 2,
		BorderColor: color,
		Stepped:     true,
		YAxisID:     YAxisPrice,
	})
	return c
}

// WithConstantLine appends a flat line, used for the price limits.
func (c Chart) WithConstantLine(label, color string, value float64) Chart {
	data := make([]*float64, len(c.Data.Labels))
	for i := range data {
		data[i] = FixedFloat64(value, 3)
	}
	c = c.WithDataset(label, color, data)
	c.Data.Datasets[len(c.Data.Datasets)-1].BorderDash = []int{6, 4}
	c.Data.Datasets[len(c.Data.Datasets)-1].PointRadius = new(int)
	return c
}

func (cs ChartScale) WithTitle(title string) ChartScale {
	cs.Title.Text = title
	return cs
}

func (cs ChartScale) WithMinAndMax(min, max float64) ChartScale {
	cs.Min = &min
	cs.Max = &max
	return cs
}

func FixedFloat64(num float64, precision int) *float64 {
	p := math.Pow(10, float64(precision))
	rounded := math.Round(num * p)
	result := rounded / p
	return &result
}
