package entity

import "github.com/heartmarshall/genomic-reports/internal/domain"

// Table names of the clinical report schema.
const (
	TableReports            = "reports"
	TableSmallMutations     = "report_small_mutations"
	TableCopyVariants       = "report_copy_variants"
	TableKBMatches          = "report_kb_matches"
	TableTherapeuticTargets = "report_therapeutic_targets"
	TableAnalystComments    = "report_analyst_comments"
	TableImages             = "report_images"
	TableGermlineReports    = "germline_reports"
	TableGermlineVariants   = "germline_variants"
	TableGermlineReviews    = "germline_reviews"
	TableVariantTexts       = "variant_texts"
)

// Default returns the registry of the clinical report schema. The order of
// Children is the cascade order.
func Default() *Registry {
	r, err := NewRegistry(
		&Class{
			Table:      TableReports,
			Restorable: true,
			Workflow:   true,
			Columns: []Column{
				{Name: "patient_id", Kind: KindText, Required: true, Immutable: true, MaxLen: 255},
				{Name: "alternate_identifier", Kind: KindText, MaxLen: 255},
				{Name: "template_id", Kind: KindInt, Required: true},
				{Name: "tumour_content", Kind: KindFloat},
				{Name: "ploidy", Kind: KindText, MaxLen: 64},
				{Name: "kb_version", Kind: KindText, MaxLen: 64},
			},
			Children: []Relation{
				{Child: TableSmallMutations, ForeignKey: "report_id", Mode: domain.RelationCascade},
				{Child: TableCopyVariants, ForeignKey: "report_id", Mode: domain.RelationCascade},
				{Child: TableKBMatches, ForeignKey: "report_id", Mode: domain.RelationIndependent},
				{Child: TableTherapeuticTargets, ForeignKey: "report_id", Mode: domain.RelationCascade},
				{Child: TableAnalystComments, ForeignKey: "report_id", Mode: domain.RelationCascade},
				{Child: TableImages, ForeignKey: "report_id", Mode: domain.RelationCascade},
			},
		},
		&Class{
			Table:      TableSmallMutations,
			Parent:     TableReports,
			ParentKey:  "report_id",
			Restorable: true,
			Columns: []Column{
				{Name: "report_id", Kind: KindInt, Required: true, Immutable: true},
				{Name: "gene", Kind: KindText, Required: true, MaxLen: 64},
				{Name: "transcript", Kind: KindText, MaxLen: 64},
				{Name: "protein_change", Kind: KindText, MaxLen: 255},
				{Name: "zygosity", Kind: KindText, MaxLen: 32},
				{Name: "tumour_ref_count", Kind: KindInt},
				{Name: "tumour_alt_count", Kind: KindInt},
				{Name: "comments", Kind: KindText},
			},
		},
		&Class{
			Table:      TableCopyVariants,
			Parent:     TableReports,
			ParentKey:  "report_id",
			Restorable: true,
			Columns: []Column{
				{Name: "report_id", Kind: KindInt, Required: true, Immutable: true},
				{Name: "gene", Kind: KindText, Required: true, MaxLen: 64},
				{Name: "cna_state", Kind: KindText, MaxLen: 64},
				{Name: "copy_change", Kind: KindInt},
				{Name: "ploidy_corrected_cn", Kind: KindInt},
				{Name: "comments", Kind: KindText},
			},
		},
		&Class{
			Table:      TableKBMatches,
			Parent:     TableReports,
			ParentKey:  "report_id",
			Restorable: true,
			Columns: []Column{
				{Name: "report_id", Kind: KindInt, Required: true, Immutable: true},
				{Name: "category", Kind: KindText, Required: true, MaxLen: 64},
				{Name: "variant", Kind: KindText, MaxLen: 255},
				{Name: "kb_variant", Kind: KindText, MaxLen: 255},
				{Name: "relevance", Kind: KindText, MaxLen: 255},
				{Name: "disease", Kind: KindText, MaxLen: 255},
				{Name: "evidence_level", Kind: KindText, MaxLen: 64},
				{Name: "approved_therapy", Kind: KindBool},
				{Name: "reference", Kind: KindText},
			},
		},
		&Class{
			Table:      TableTherapeuticTargets,
			Parent:     TableReports,
			ParentKey:  "report_id",
			Restorable: true,
			Columns: []Column{
				{Name: "report_id", Kind: KindInt, Required: true, Immutable: true},
				{Name: "type", Kind: KindText, Required: true, Enum: []string{"therapeutic", "chemoresistance"}},
				{Name: "rank", Kind: KindInt, Required: true},
				{Name: "gene", Kind: KindText, MaxLen: 64},
				{Name: "variant", Kind: KindText, MaxLen: 255},
				{Name: "therapy", Kind: KindText, Required: true, MaxLen: 255},
				{Name: "context", Kind: KindText, MaxLen: 255},
				{Name: "evidence_level", Kind: KindText, MaxLen: 64},
				{Name: "notes", Kind: KindText},
			},
			Ranking: &Ranking{ScopeColumns: []string{"report_id", "type"}, RankColumn: "rank"},
		},
		&Class{
			Table:      TableAnalystComments,
			Parent:     TableReports,
			ParentKey:  "report_id",
			Restorable: true,
			Columns: []Column{
				{Name: "report_id", Kind: KindInt, Required: true, Immutable: true},
				{Name: "comments", Kind: KindText, Required: true},
			},
		},
		&Class{
			Table:     TableImages,
			Parent:    TableReports,
			ParentKey: "report_id",
			Columns: []Column{
				{Name: "report_id", Kind: KindInt, Required: true, Immutable: true},
				{Name: "key", Kind: KindText, Required: true, MaxLen: 255},
				{Name: "filename", Kind: KindText, Required: true, MaxLen: 255},
				{Name: "format", Kind: KindText, MaxLen: 16},
				{Name: "title", Kind: KindText, MaxLen: 255},
				{Name: "caption", Kind: KindText},
			},
		},
		&Class{
			Table:      TableGermlineReports,
			Restorable: true,
			Workflow:   true,
			Columns: []Column{
				{Name: "patient_id", Kind: KindText, Required: true, Immutable: true, MaxLen: 255},
				{Name: "biopsy_name", Kind: KindText, Required: true, MaxLen: 255},
				{Name: "normal_library", Kind: KindText, MaxLen: 255},
				{Name: "source_version", Kind: KindText, Required: true, MaxLen: 64},
				{Name: "source_path", Kind: KindText, Required: true},
				{Name: "exported", Kind: KindBool},
			},
			Children: []Relation{
				{Child: TableGermlineVariants, ForeignKey: "germline_report_id", Mode: domain.RelationCascade},
				{Child: TableGermlineReviews, ForeignKey: "germline_report_id", Mode: domain.RelationCascade},
			},
		},
		&Class{
			Table:      TableGermlineVariants,
			Parent:     TableGermlineReports,
			ParentKey:  "germline_report_id",
			Restorable: true,
			Columns: []Column{
				{Name: "germline_report_id", Kind: KindInt, Required: true, Immutable: true},
				{Name: "gene", Kind: KindText, Required: true, MaxLen: 64},
				{Name: "variant", Kind: KindText, Required: true, MaxLen: 255},
				{Name: "transcript", Kind: KindText, MaxLen: 64},
				{Name: "chromosome", Kind: KindText, MaxLen: 16},
				{Name: "position", Kind: KindInt},
				{Name: "reference", Kind: KindText, MaxLen: 255},
				{Name: "alteration", Kind: KindText, MaxLen: 255},
				{Name: "zygosity", Kind: KindText, MaxLen: 32},
				{Name: "hidden", Kind: KindBool},
				{Name: "flagged", Kind: KindText, MaxLen: 255},
				{Name: "notes", Kind: KindText},
			},
		},
		&Class{
			Table:     TableGermlineReviews,
			Parent:    TableGermlineReports,
			ParentKey: "germline_report_id",
			Columns: []Column{
				{Name: "germline_report_id", Kind: KindInt, Required: true, Immutable: true},
				{Name: "reviewer_id", Kind: KindUUID, Required: true},
				{Name: "type", Kind: KindText, Required: true, MaxLen: 64},
				{Name: "comment", Kind: KindText},
			},
		},
		&Class{
			Table:      TableVariantTexts,
			Restorable: true,
			Columns: []Column{
				{Name: "project_id", Kind: KindInt, Required: true},
				{Name: "template_id", Kind: KindInt, Required: true},
				{Name: "variant_name", Kind: KindText, Required: true, MaxLen: 255},
				{Name: "cancer_type", Kind: KindTextList},
				{Name: "text", Kind: KindText, Required: true},
			},
			Dedup: &Dedup{
				Columns:   []string{"variant_name", "cancer_type", "template_id", "project_id"},
				KeyColumn: "dedup_key",
			},
		},
	)
	if err != nil {
		panic(err)
	}
	return r
}
