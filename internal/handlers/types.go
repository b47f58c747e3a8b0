package handlers

// RedirectRequest is the request for resolving an affiliate link.
type RedirectRequest struct {
	Slug string `doc:"Affiliate link slug" example:"silk-blazer" path:"slug"`
}

// RedirectResponse is a permanent redirect to the link destination.
type RedirectResponse struct {
	Status   int
	Location string `doc:"Destination URL" header:"Location"`
}

// ViewRequest is the request for counting a post view.
type ViewRequest struct {
	ID string `doc:"Post identifier" example:"post-1" path:"id"`
}

// ViewResponse acknowledges a view beacon.
type ViewResponse struct {
	Body struct {
		Success bool `doc:"Always true on 200" example:"true" json:"success"`
	}
}

// StatsResponse holds the dashboard aggregates.
type StatsResponse struct {
	Body struct {
		TotalPosts int64 `doc:"Number of posts"             example:"12" json:"totalPosts"`
		TotalUsers int64 `doc:"Number of registered users"  example:"3"  json:"totalUsers"`
		TotalViews int64 `doc:"Sum of view counts of posts" example:"42" json:"totalViews"`
	}
}
