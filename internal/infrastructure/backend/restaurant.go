package backend

import (
	"context"
	"net/url"
	"strconv"

	"github.com/delivery/storefront/internal/domain/catalog"
	"github.com/delivery/storefront/internal/domain/shared"
	"github.com/delivery/storefront/internal/infrastructure/serviceclient"
)

// RestaurantAPI talks to the restaurant service
type RestaurantAPI struct {
	client *serviceclient.Client
}

// NewRestaurantAPI creates a new RestaurantAPI
func NewRestaurantAPI(client *serviceclient.Client) *RestaurantAPI {
	return &RestaurantAPI{client: client}
}

type dishDTO struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       Amount `json:"price"`
	ImageURL    string `json:"imageUrl"`
}

func (d dishDTO) toDomain() catalog.Dish {
	return catalog.Dish{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price.Decimal,
		ImageURL:    d.ImageURL,
	}
}

type restaurantDTO struct {
	ID      int64     `json:"id,omitempty"`
	Name    string    `json:"name"`
	Cuisine string    `json:"cuisine"`
	Address string    `json:"address"`
	Dishes  []dishDTO `json:"dishes,omitempty"`
}

func (r restaurantDTO) toDomain() catalog.Restaurant {
	dishes := make([]catalog.Dish, 0, len(r.Dishes))
	for _, d := range r.Dishes {
		dishes = append(dishes, d.toDomain())
	}
	return catalog.Restaurant{
		ID:      r.ID,
		Name:    r.Name,
		Cuisine: r.Cuisine,
		Address: r.Address,
		Dishes:  dishes,
	}
}

type dishRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Price        Amount `json:"price"`
	ImageURL     string `json:"imageUrl"`
	RestaurantID int64  `json:"restaurantId,omitempty"`
}

func restaurantPath(id int64) string {
	return "/restaurants/" + strconv.FormatInt(id, 10)
}

func decodeRestaurant(resp *serviceclient.Response) (catalog.Restaurant, error) {
	out, err := serviceclient.DecodeJSON[restaurantDTO](resp)
	if err != nil {
		return catalog.Restaurant{}, err
	}
	return out.toDomain(), nil
}

func decodeDish(resp *serviceclient.Response) (catalog.Dish, error) {
	out, err := serviceclient.DecodeJSON[dishDTO](resp)
	if err != nil {
		return catalog.Dish{}, err
	}
	return out.toDomain(), nil
}

// List returns a page of restaurants, optionally filtered by cuisine
func (a *RestaurantAPI) List(ctx context.Context, q catalog.ListQuery) (shared.Paginated[catalog.Restaurant], error) {
	query := url.Values{}
	if q.Cuisine != "" {
		query.Set("cuisine", q.Cuisine)
	}
	if q.Page != nil {
		query.Set("page", strconv.Itoa(*q.Page))
	}
	resp, err := a.client.Get(ctx, "/restaurants", query)
	if err != nil {
		return shared.Paginated[catalog.Restaurant]{}, err
	}
	page, err := serviceclient.DecodePage[restaurantDTO](resp)
	if err != nil {
		return shared.Paginated[catalog.Restaurant]{}, err
	}
	return mapPage(page, restaurantDTO.toDomain), nil
}

// Get returns a restaurant with its menu
func (a *RestaurantAPI) Get(ctx context.Context, id int64) (catalog.Restaurant, error) {
	resp, err := a.client.Get(ctx, restaurantPath(id), nil)
	if err != nil {
		return catalog.Restaurant{}, err
	}
	return decodeRestaurant(resp)
}

// Dishes returns the menu of a restaurant
func (a *RestaurantAPI) Dishes(ctx context.Context, id int64) ([]catalog.Dish, error) {
	resp, err := a.client.Get(ctx, restaurantPath(id)+"/dishes", nil)
	if err != nil {
		return nil, err
	}
	out, err := serviceclient.DecodeJSON[[]dishDTO](resp)
	if err != nil {
		return nil, err
	}
	dishes := make([]catalog.Dish, 0, len(out))
	for _, d := range out {
		dishes = append(dishes, d.toDomain())
	}
	return dishes, nil
}

// CreateRestaurant adds a restaurant (admin)
func (a *RestaurantAPI) CreateRestaurant(ctx context.Context, in catalog.RestaurantInput) (catalog.Restaurant, error) {
	resp, err := a.client.Post(ctx, "/admin/restaurants", restaurantDTO{Name: in.Name, Cuisine: in.Cuisine, Address: in.Address})
	if err != nil {
		return catalog.Restaurant{}, err
	}
	return decodeRestaurant(resp)
}

// UpdateRestaurant replaces a restaurant's details (admin)
func (a *RestaurantAPI) UpdateRestaurant(ctx context.Context, id int64, in catalog.RestaurantInput) (catalog.Restaurant, error) {
	resp, err := a.client.Put(ctx, "/admin"+restaurantPath(id), restaurantDTO{Name: in.Name, Cuisine: in.Cuisine, Address: in.Address})
	if err != nil {
		return catalog.Restaurant{}, err
	}
	return decodeRestaurant(resp)
}

// DeleteRestaurant removes a restaurant (admin)
func (a *RestaurantAPI) DeleteRestaurant(ctx context.Context, id int64) error {
	_, err := a.client.Delete(ctx, "/admin"+restaurantPath(id))
	return err
}

// CreateDish adds a dish to a restaurant's menu (admin)
func (a *RestaurantAPI) CreateDish(ctx context.Context, restaurantID int64, in catalog.DishInput) (catalog.Dish, error) {
	resp, err := a.client.Post(ctx, "/admin"+restaurantPath(restaurantID)+"/dishes", dishRequest{
		Name:         in.Name,
		Description:  in.Description,
		Price:        NewAmount(in.Price),
		ImageURL:     in.ImageURL,
		RestaurantID: restaurantID,
	})
	if err != nil {
		return catalog.Dish{}, err
	}
	return decodeDish(resp)
}

// UpdateDish replaces a dish (admin)
func (a *RestaurantAPI) UpdateDish(ctx context.Context, dishID int64, in catalog.DishInput) (catalog.Dish, error) {
	resp, err := a.client.Put(ctx, "/admin/restaurants/dishes/"+strconv.FormatInt(dishID, 10), dishRequest{
		Name:        in.Name,
		Description: in.Description,
		Price:       NewAmount(in.Price),
		ImageURL:    in.ImageURL,
	})
	if err != nil {
		return catalog.Dish{}, err
	}
	return decodeDish(resp)
}

// DeleteDish removes a dish (admin)
func (a *RestaurantAPI) DeleteDish(ctx context.Context, dishID int64) error {
	_, err := a.client.Delete(ctx, "/admin/restaurants/dishes/"+strconv.FormatInt(dishID, 10))
	return err
}
