package repositories

// RepositoryProvider bundles all repository facades for injection into the
// service layer.
type RepositoryProvider struct {
	RateRepo       RateRepositoryFacade
	MovementRepo   MovementRepositoryFacade
	ConversionRepo ConversionRepositoryFacade
}
