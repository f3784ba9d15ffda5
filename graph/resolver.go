package graph

import (
	"bitbucket.org/mmdatafocus/pos_backend/workflow"
)

// Resolver serves dependency injection for the GraphQL resolvers.
type Resolver struct {
	Service workflow.Service
}

func (r *Resolver) Mutation() MutationResolver { return &mutationResolver{r} }

func (r *Resolver) Query() QueryResolver { return &queryResolver{r} }

type mutationResolver struct{ *Resolver }
type queryResolver struct{ *Resolver }
