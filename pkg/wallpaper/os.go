package wallpaper

// OS is the platform side of the wallpaper publisher.
type OS interface {
	setWallpaper(imagePath string) error
	getDesktopDimension() (int, int, error)
}
