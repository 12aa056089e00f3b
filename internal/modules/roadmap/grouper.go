package roadmap

// Group buckets projects by period, preserving the order in which they
// were supplied within each bucket.
func Group(projects []Project) Roadmap {
	roadmap := make(Roadmap)
	for _, p := range projects {
		roadmap[p.Period] = append(roadmap[p.Period], p)
	}
	return roadmap
}
