package prompt

const defaultModel = "claude-sonnet-4-6"

// builtins is the registry of built-in templates keyed by namespace.
var builtins = map[string]Template{
	NamespaceBenchmarkComparison: {
		Description: "Grades a prospect website against a matched industry benchmark.",
		Model:       defaultModel,
		Temperature: 0.2,
		System: "You are a senior web strategist grading small-business websites for a marketing agency. " +
			"Compare the target against the benchmark peer, weigh each dimension for the industry, and " +
			"judge how likely the business is to buy a website improvement engagement.\n\n" +
			"Output ONLY a JSON object with these fields:\n" +
			`{"overall_grade":"A-F","overall_score":0-100,"lead_score":0-100,"priority_tier":"hot|warm|cold",` +
			`"budget_likelihood":"high|medium|low","dimension_weights_used":{"design":0.3,"seo":0.3,"content":0.2,"social":0.2},` +
			`"comparison_summary":{"gap":0,"gap_assessment":"","strongest_areas":[],"weakest_areas":[],"quick_wins":[]},` +
			`"business_context":{},"sales_insights":{},"grading_rationale":""}`,
		User: "Company: {{.CompanyName}} ({{.Industry}})\n\n" +
			"Comparison payload:\n{{json .Payload}}\n\n" +
			"Produce the JSON grade now.",
	},
	NamespaceIssueDeduplication: {
		Description: "Merges per-module issues that describe the same underlying problem.",
		Model:       defaultModel,
		Temperature: 0.1,
		System: "You consolidate website audit findings. Several analyzer modules often report the same " +
			"problem in different words. Merge duplicates, keep every distinct problem, and preserve all " +
			"evidence and affected pages from the merged issues.\n\n" +
			"Cite screenshots ONLY with IDs from the SCREENSHOT REFERENCES list (SS-1, SS-2, ...). " +
			"Never invent an ID.\n\n" +
			"Output ONLY a JSON object:\n" +
			`{"consolidatedIssues":[{"id":"ISSUE-1","title":"","description":"","severity":"critical|high|medium|low",` +
			`"priority":"","category":"","sources":["module"],"evidence":[],"screenshotRefs":["SS-1"],"affectedPages":[],"recommendation":""}],` +
			`"mergeLog":[{"consolidatedId":"ISSUE-1","mergedIssues":["module: title"],"reason":""}],` +
			`"statistics":{"originalCount":0,"consolidatedCount":0,"reductionPercent":0}}`,
		User: "Company: {{.CompanyName}}\n\n" +
			"RAW ISSUES BY MODULE:\n{{json .Issues}}\n\n" +
			"SCREENSHOT REFERENCES:\n{{range .ScreenshotReferences}}- {{.ID}}: {{.PageURL}} ({{.Viewport}})\n{{end}}\n" +
			"Produce the consolidated JSON now.",
	},
	NamespaceExecutiveSummary: {
		Description: "Writes the executive summary that opens the prospect report.",
		Model:       defaultModel,
		Temperature: 0.4,
		System: "You write the executive summary of a website audit for a small-business owner. Be concrete, " +
			"plain-spoken, and back every key finding with screenshot evidence.\n\n" +
			"Cite screenshots ONLY with IDs from the SCREENSHOT REFERENCES list (SS-1, SS-2, ...). " +
			"Never invent an ID.\n\n" +
			"Output ONLY a JSON object:\n" +
			`{"executiveSummary":{"overview":"","keyFindings":[{"title":"","description":"","impact":"","evidence":["SS-1"]}],` +
			`"priorityActions":[{"title":"","description":"","timeline":"","impact":""}],"nextSteps":[""]},` +
			`"metadata":{"tone":"","confidence":""}}`,
		User: "Company: {{.CompanyName}} ({{.Industry}})\n" +
			"Grade: {{.Grade}} ({{.OverallScore}}/100)\n" +
			"Lead priority: {{json .LeadPriority}}\n" +
			"Dimension scores:\n{{json .Scores}}\n\n" +
			"TOP ISSUES:\n{{json .Issues}}\n\n" +
			"QUICK WINS:\n{{range .QuickWins}}- {{.}}\n{{end}}\n" +
			"SCREENSHOT REFERENCES:\n{{range .ScreenshotReferences}}- {{.ID}}: {{.PageURL}} ({{.Viewport}})\n{{end}}\n" +
			"Produce the executive summary JSON now.",
	},
}
