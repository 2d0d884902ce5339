package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/match --output domain/match --outpkg matchmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/matchstats --output domain/matchstats --outpkg matchstatsmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name PostRepository --dir ../domain/prediction --output domain/prediction --outpkg predictionmock --filename post_repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/settlement --output domain/settlement --outpkg settlementmock --filename repository_mock.go
