package utils

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()

	mentionPattern = regexp.MustCompile(`@([\p{Han}\w]+)`)
)

func init() {
	// 外链新开页并带 noreferrer
	ugcPolicy.AddTargetBlankToFullyQualifiedLinks(true)
	ugcPolicy.RequireNoReferrerOnLinks(true)
}

// SanitizeUGC 帖子/评论正文入库前清洗,保留安全的富文本标签
func SanitizeUGC(source string) string {
	return ugcPolicy.Sanitize(source)
}

// SanitizeText 私信等纯文本场景,剥掉全部标签
func SanitizeText(source string) string {
	return strictPolicy.Sanitize(source)
}

// ExtractMentions 提取内容中 @ 到的用户名,按出现顺序去重
func ExtractMentions(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		names = append(names, m[1])
	}
	return names
}
