package inspiration

type IdeaCategory struct {
	Name  string   `json:"name"`
	Ideas []string `json:"ideas"`
}

var ideas = []IdeaCategory{
	{
		Name: "Landscapes",
		Ideas: []string{
			"sunset on the beach with palm trees",
			"snowy mountains at dawn",
			"enchanted forest with magical lights",
			"futuristic city at night",
			"japanese garden in spring",
		},
	},
	{
		Name: "Animals",
		Ideas: []string{
			"astronaut cat in outer space",
			"dragon flying over a castle",
			"wolf howling at the moon",
			"unicorn in a magical forest",
			"phoenix rising from the fire",
		},
	},
	{
		Name: "Art",
		Ideas: []string{
			"portrait in the style of Van Gogh",
			"city in cyberpunk style",
			"surrealist landscape in the style of Dali",
			"robot with flowers growing on it",
			"galaxy inside a bottle",
		},
	},
	{
		Name: "Fantasy",
		Ideas: []string{
			"castle floating in the clouds",
			"portal to another dimension",
			"mythical creature in the ocean",
			"giant tree of life",
			"underwater city with mermaids",
		},
	},
}

// Ideas returns a copy of the prompt suggestion catalogue.
func Ideas() []IdeaCategory {
	out := make([]IdeaCategory, len(ideas))
	for i, category := range ideas {
		out[i] = IdeaCategory{Name: category.Name, Ideas: append([]string(nil), category.Ideas...)}
	}
	return out
}
