package analysis

// ChartType names a renderer-agnostic chart kind.
type ChartType string

const (
	ChartHeatmap   ChartType = "heatmap"
	ChartBar       ChartType = "bar"
	ChartHistogram ChartType = "histogram"
	ChartBoxPlot   ChartType = "box_plot"
	ChartScatter   ChartType = "scatter"
	ChartPie       ChartType = "pie"
)

// ChartSpec describes a chart without rendering it.
type ChartSpec struct {
	ChartType ChartType `json:"chart_type"`
	X         string    `json:"x,omitempty"`
	Y         string    `json:"y,omitempty"`
	Title     string    `json:"title"`
	DataRef   string    `json:"data_ref"`
}
