package storybook

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog 兜底页面模板集合
type Catalog struct {
	Pages []Page `yaml:"pages"`
}

// ParseCatalog 解析 YAML 页面模板
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(c.Pages) == 0 {
		return nil, fmt.Errorf("parse catalog: no pages")
	}
	return &c, nil
}

// FallbackGenerator 生成服务不可用时的确定性离线内容
type FallbackGenerator struct {
	catalog *Catalog
}

// NewFallbackGenerator 使用内嵌目录创建
func NewFallbackGenerator() *FallbackGenerator {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return &FallbackGenerator{catalog: c}
}

// NewFallbackGeneratorWithCatalog 使用自定义目录创建
func NewFallbackGeneratorWithCatalog(c *Catalog) *FallbackGenerator {
	return &FallbackGenerator{catalog: c}
}

// Size 目录中的页面数
func (g *FallbackGenerator) Size() int {
	return len(g.catalog.Pages)
}

// Generate 返回前 min(pageCount, 目录页数) 页，pageCount <= 0 时为空
func (g *FallbackGenerator) Generate(child, theme string, pageCount int) []Page {
	n := min(max(pageCount, 0), len(g.catalog.Pages))
	r := strings.NewReplacer("{child}", child, "{theme}", theme)

	pages := make([]Page, n)
	for i := range n {
		tpl := g.catalog.Pages[i]
		pages[i] = Page{Text: r.Replace(tpl.Text), Illustration: tpl.Illustration}
	}
	return pages
}
