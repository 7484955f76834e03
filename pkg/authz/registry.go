package authz

const (
	RoleCatalogAdmin = "catalog-admin"
	RoleViewer       = "viewer"
	RoleAnonymous    = "anonymous"
)

const (
	ActionRead  = "read"
	ActionAdmin = "admin"
)

const DomainCatalog = "catalog"

const (
	ObjectTaxonomyTree  = "taxonomy.tree"
	ObjectTaxonomyNodes = "taxonomy.nodes"
	ObjectTaxonomyCodes = "taxonomy.codes"
)
