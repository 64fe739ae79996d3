package linkareer

import "fmt"

const (
	BaseURL        = "https://linkareer.com"
	ListURL        = BaseURL + "/list/intern"
	ActivityPrefix = BaseURL + "/activity/"
)

// Labels of the <dt> cells on the detail page.
const (
	LabelEnterpriseType = "기업형태"
	LabelJobCategory    = "모집직무"
	LabelRegion         = "근무지역"
	LabelPeriod         = "접수기간"
	LabelHomepage       = "홈페이지"
)

// Period line markers.
const (
	startMarker = "시작일"
	endMarker   = "마감일"
)

// Selectors is the fixed listing schema. Playwright accepts CSS as-is and
// XPath behind the "xpath=" prefix.
type Selectors struct {
	Rows       string
	Cells      string
	DetailLink string
	// PageButton is a format string taking the page number.
	PageButton string
	NextArrow  string

	Title     string
	Image     string
	Organizer string
	// Field is a format string taking a <dt> label.
	Field string
}

func DefaultSelectors() Selectors {
	return Selectors{
		Rows:       "tbody tr",
		Cells:      "td",
		DetailLink: `a[href^="/activity/"]`,
		PageButton: `xpath=//button[span[text()="%d"]]`,
		NextArrow:  "button.button-arrow-next",

		Title:     "header.ActivityInformationHeader__StyledWrapper-sc-7bdaebe9-0 h1",
		Image:     "img.recruit-image",
		Organizer: "h2.organization-name",
		Field:     `xpath=//dl[dt[text()="%s"]]/dd`,
	}
}

func (s Selectors) pageButton(n int) string {
	return fmt.Sprintf(s.PageButton, n)
}

func (s Selectors) field(label string) string {
	return fmt.Sprintf(s.Field, label)
}
