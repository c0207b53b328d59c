package markdown

// category groups elements that share a rendering rule.
type category int

const (
	categoryUnknown category = iota
	categoryContainer
	categoryParagraph
	categoryHeading
	categoryList
	categoryListItem
	categoryLink
	categoryImage
	categoryEmphasis
	categoryStrong
	categoryCode
	categoryCodeBlock
	categoryBlockquote
	categoryTable
	categoryLineBreak
	categoryRule
	categoryIgnored
)

var categories = map[string]category{
	"html":       categoryContainer,
	"body":       categoryContainer,
	"div":        categoryContainer,
	"section":    categoryContainer,
	"article":    categoryContainer,
	"main":       categoryContainer,
	"header":     categoryContainer,
	"footer":     categoryContainer,
	"aside":      categoryContainer,
	"nav":        categoryContainer,
	"figure":     categoryContainer,
	"figcaption": categoryContainer,
	"p":          categoryParagraph,
	"h1":         categoryHeading,
	"h2":         categoryHeading,
	"h3":         categoryHeading,
	"h4":         categoryHeading,
	"h5":         categoryHeading,
	"h6":         categoryHeading,
	"ul":         categoryList,
	"ol":         categoryList,
	"li":         categoryListItem,
	"a":          categoryLink,
	"img":        categoryImage,
	"em":         categoryEmphasis,
	"i":          categoryEmphasis,
	"strong":     categoryStrong,
	"b":          categoryStrong,
	"code":       categoryCode,
	"pre":        categoryCodeBlock,
	"blockquote": categoryBlockquote,
	"table":      categoryTable,
	"br":         categoryLineBreak,
	"hr":         categoryRule,
	"head":       categoryIgnored,
	"script":     categoryIgnored,
	"style":      categoryIgnored,
	"noscript":   categoryIgnored,
	"template":   categoryIgnored,
}

// categorize maps a lowercase tag name to its category.
// Tags not in the table are categoryUnknown.
func categorize(tag string) category {
	return categories[tag]
}
