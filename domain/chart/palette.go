package chart

// DefaultColor fills single-series marks
const DefaultColor = "#4e79a7"

// Placeholder text drawn when a chart has nothing to show
const NoDataMessage = "No data available"

var (
	Category10 Palette
	Tableau10  Palette
)

// Palette is an ordered list of CSS hex colors
type Palette []string

func init() {
	Category10 = splitColorString("1f77b4ff7f0e2ca02cd627289467bd8c564be377c27f7f7fbcbd2217becf")
	Tableau10 = splitColorString("4e79a7f28e2ce1575976b7b259a14fedc949af7aa1ff9da79c755fbab0ab")
}

func splitColorString(str string) []string {
	var arr []string
	for i := 0; i < len(str); i += 6 {
		arr = append(arr, "#"+str[i:i+6])
	}
	return arr
}

// At returns the color for index i, cycling
func (p Palette) At(i int) string {
	if len(p) == 0 {
		return DefaultColor
	}
	if i < 0 {
		i = -i
	}
	return p[i%len(p)]
}
